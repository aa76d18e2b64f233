// Package bib models bibliography entries and the attachment links they
// carry.
//
// An Entry owns an ordered list of FileLink records. The links are persisted
// as a single "file" field using the description:path:type;... encoding, with
// backslash escaping for the separators, so libraries stay compatible with
// reference managers that read the same field. ExpectedFileNames exposes the
// filenames an entry's links name, which drives attachment discovery.
package bib
