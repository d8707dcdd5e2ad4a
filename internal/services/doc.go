// Package services defines shared utilities consumed by the pipeline stages
// and the posterior collaborator.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper. Retryable classifies
//     posterior construction failures so permanent ones (malformed input,
//     bad configuration) are not retried.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
