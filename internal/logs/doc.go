// Package logs finds and reads the daily run logs written by logsink.
//
// It lists digest_<timestamp>.log files newest first, returns the last N
// lines of a log with bounded memory, and follows a log while a run is still
// appending to it. "newsctl logs" is built on these helpers.
package logs
