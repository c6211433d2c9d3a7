// Package remote opens SSH connections to the deployment host and drives one
// persistent POSIX shell over them.
//
// Commands sent through a Shell share the same process, so a cd issued by one
// command applies to every later command. Each command's stdout and stderr are
// merged and delimited by a per-shell nonce marker that carries the exit
// status back to the caller.
package remote
