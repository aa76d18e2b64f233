package fsys

import (
	"io/fs"
	"os"
)

// FS is the read-only filesystem surface used by scanning and matching.
//
// ReadDir reports entries without following symlinks, so callers can tell a
// link from its target with Mode()&fs.ModeSymlink.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.FileInfo, error)
	// SameFile reports whether a and b refer to the same underlying file.
	// Missing or unreadable paths return an error.
	SameFile(a, b string) (bool, error)
}

// OSFS implements FS on the host filesystem.
type OSFS struct{}

// OS returns the host filesystem.
func OS() OSFS {
	return OSFS{}
}

// Stat follows symlinks.
func (OSFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// Lstat does not follow symlinks.
func (OSFS) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

// ReadDir lists name in filename order. Entries that vanish between the
// listing and their lstat are omitted.
func (OSFS) ReadDir(name string) ([]fs.FileInfo, error) {
	entries, err := os.ReadDir(name)
	infos := make([]fs.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		infos = append(infos, info)
	}
	return infos, err
}

// SameFile compares the device and inode behind a and b.
func (OSFS) SameFile(a, b string) (bool, error) {
	return sameFile(a, b)
}
