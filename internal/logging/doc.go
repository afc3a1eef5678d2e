// Package logging assembles structured slog loggers and formatting helpers used
// across cinelake commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so ingestion and transform code
// can tag log lines with run IDs, sources, stages, and tables. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
