// Package logging assembles structured slog loggers and formatting helpers used
// across newsctl.
//
// It owns the console and JSON handlers, centralizes level parsing, stamps each
// record with the run session identifier, and exposes context helpers so the
// orchestrator can tag log lines with the step being executed. The package also
// provides a no-op logger for tests and log retention for run logs.
//
// Structured logs describe what newsctl is doing. The news tool's own output
// never flows through these handlers; it is written verbatim by logsink.
package logging
