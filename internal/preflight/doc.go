// Package preflight provides readiness checks for the filesystem paths a
// run reads from and writes to.
//
// The driver calls RunAll before loading samples so that an unreadable
// input or an unwritable output directory fails the run before any
// posterior construction work starts. The "skyarea config validate"
// command reports the same results without running anything.
package preflight
