// Package main hosts the skyarea CLI entrypoint and command graph.
//
// The root command runs one sky-localization post-processing job: it loads
// posterior samples, builds or loads the clustered KDE posterior, and writes
// the sky map, cluster assignment plot, credible areas and optional
// injection p-value into the output directory. Subcommands scaffold and
// validate configuration and inspect the run history ledger.
//
// Keep this package lean: flag parsing, config resolution and output
// formatting live here, the pipeline itself lives in internal/driver.
package main
