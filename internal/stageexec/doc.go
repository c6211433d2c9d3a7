// Package stageexec runs newsctl's fail-fast step sequences.
//
// A sequence moves from StateStart through each step to StateDone, or to
// StateFailed at the first step that returns an error. Both terminal states
// are final and nothing is retried.
package stageexec
