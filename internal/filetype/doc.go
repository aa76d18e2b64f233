// Package filetype maps filename extensions to external file type names.
//
// The registry ships with the common document and image formats reference
// managers recognise and can be extended or overridden from configuration.
// Extension lookup is case-insensitive; the matcher uses ResolveExtension to
// label newly linked files and falls back to UnknownName when nothing
// matches.
package filetype
