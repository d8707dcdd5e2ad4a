// Package config loads, normalizes, and validates skyarea configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the knobs
// that are stable across runs: retry budget, sky map resolution, clustering
// limits, logging, and the run history ledger. Per-run inputs (sample file,
// output directory, injection table) arrive as command-line flags and are
// layered on top by the CLI.
package config
