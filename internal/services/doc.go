// Package services defines shared utilities consumed by the ingestion and
// transform stages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source names, and table names for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (not found, configuration, write failure) so the pipeline can decide
//     whether a failure is scoped to one source or aborts the run.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
