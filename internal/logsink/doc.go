// Package logsink owns the durable run log of a daily run.
//
// Open creates the log directory when needed, opens
// <dir>/digest_<YYYYMMDD_HHMMSS>.log for append, and returns a Session whose
// Write forwards every call to the file and then to the console. Close syncs
// and closes the file exactly once, so callers defer it on every path.
package logsink
