// Package logging assembles structured slog loggers and formatting helpers used
// across facehugger.
//
// It owns the plain, console, and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so run code can tag log lines
// with the run identifier and the repository being processed. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// The plain format is the default: it writes only the message (plus any
// attributes), which keeps the CLI output readable as a transcript of the run.
package logging
