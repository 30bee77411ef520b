// Package services defines shared utilities consumed by the workflow stages.
//
// Key responsibilities:
//   - Context helpers that stamp work folder IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     skips, counted folder failures, or fatal ledger errors.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
