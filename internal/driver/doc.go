// Package driver runs the sky-localization post-processing pipeline: load
// posterior samples, obtain a posterior density (by loading a snapshot or
// building one with retries), persist it, and write the sky map, cluster
// assignment plot, credible areas and injection p-value.
//
// Each step runs as a named stage through stageexec so that start,
// completion and failure are logged uniformly with the run id. Outputs are
// written atomically into the output directory, which is created on demand
// and locked for the duration of the run.
package driver
