// Package autolink matches discovered files to bibliography entries and
// proposes new attachment links without creating duplicates.
//
// Matcher is a pure function of an entry, a scan result and the root
// directories: a file is a candidate when its name equals one of the
// filenames the entry's file field expects, and it is dropped when it is the
// same filesystem object as a link the entry already has. Surviving files
// become FileLinks relative to the first containing root, typed through a
// TypeResolver.
//
// Linker runs a batch: one scan for all entries, matching in a bounded worker
// pool, then serial application through a caller-supplied Sink so the caller
// decides how mutations are persisted and journaled.
package autolink
