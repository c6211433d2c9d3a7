// Package orchestrator drives the two top-level flows: the daily run, which
// invokes the news tool's crawl and digest subcommands and tees their output
// into a timestamped run log, and the deploy flow, which pushes the project
// to the remote host and restarts its service.
//
// Both flows are strictly sequential and fail fast. Steps execute through
// stageexec.Sequence, so the first failing step ends the run and no later
// step starts. Callers receive every step result that was produced, along
// with the error of the step that failed.
package orchestrator
