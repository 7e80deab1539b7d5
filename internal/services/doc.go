// Package services defines shared utilities consumed by the workflow
// operation handlers and the job services they fan out to.
//
// Key responsibilities:
//   - Context helpers that stamp workflow instance IDs, operation names,
//     mediapackage IDs, and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failures
//     classifiable (configuration, execution, serialization, storage,
//     inspection) after they have been wrapped with stage context.
//
// Use these helpers when wiring new operation logic so error handling and
// observability stay uniform across the pipeline.
package services
