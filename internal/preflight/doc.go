// Package preflight provides readiness checks for the programs, directories,
// and remote host that newsctl depends on.
//
// The "newsctl check" command renders these results as a table. Checks never
// modify anything: a missing log directory is reported as creatable rather
// than created.
package preflight
