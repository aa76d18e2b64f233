// Package library persists bibliography entries and auto-link history in
// SQLite.
//
// The Store manages database connections, schema initialization, entry CRUD,
// library metadata such as the file directories, and the run journal. Every
// link run is recorded as a Run, and each entry it touches gets a Change
// holding the file field before and after, so a run can be reverted as long
// as nothing else modified those entries since.
//
// File fields are stored in their encoded string form (see bib.FormatFileField)
// so the journal compares exactly what a reference manager would read.
// Schema changes bump the version in schema.go; users recreate the database
// to adopt the new schema.
package library
