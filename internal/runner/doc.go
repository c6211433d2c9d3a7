// Package runner launches external commands for newsctl.
//
// Run starts exactly one child process, merges its stdout and stderr into a
// single stream in arrival order, optionally forwards that stream live, and
// reports the exit status as a StepResult. It never interprets exit codes:
// deciding whether a non-zero exit is fatal belongs to the orchestrator.
package runner
