// Package logs reads back the JSON log file written by autolink.
//
// Tail returns the last records of the file or the records appended after a
// byte offset, optionally filtered to one link run or a minimum level, and
// can poll for new records so the CLI can follow a run while it happens.
// Memory stays bounded by the number of records requested.
package logs
