// Package fsys abstracts the filesystem operations the scanner and matcher
// need: metadata lookups, directory listings and file identity.
//
// OS talks to the host filesystem and decides identity from device and inode
// numbers, so hard links, symlinks and overlapping roots all compare equal.
// NewBilly adapts any go-billy filesystem (memfs in tests) and decides
// identity by canonicalising paths through their symlinks, optionally
// folding case for case-insensitive volumes.
package fsys
