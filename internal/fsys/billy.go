package fsys

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// maxSymlinkHops bounds symlink expansion while canonicalising a path.
const maxSymlinkHops = 40

// ErrSymlinkLoop is returned when a path cannot be canonicalised within
// maxSymlinkHops expansions.
var ErrSymlinkLoop = errors.New("too many levels of symbolic links")

// BillyFS adapts a billy.Filesystem to FS.
type BillyFS struct {
	fs              billy.Filesystem
	caseInsensitive bool
}

// BillyOption customises a BillyFS.
type BillyOption func(*BillyFS)

// WithCaseInsensitive makes SameFile treat paths that differ only in case or
// Unicode normalisation as the same file.
func WithCaseInsensitive() BillyOption {
	return func(b *BillyFS) {
		b.caseInsensitive = true
	}
}

// NewBilly wraps fs. Paths handed to the adapter are treated as absolute
// within fs.
func NewBilly(fs billy.Filesystem, opts ...BillyOption) *BillyFS {
	b := &BillyFS{fs: fs}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Underlying returns the wrapped filesystem.
func (b *BillyFS) Underlying() billy.Filesystem {
	return b.fs
}

// Stat follows symlinks, including those in intermediate directories.
func (b *BillyFS) Stat(name string) (fs.FileInfo, error) {
	resolved, err := b.canonical(name)
	if err != nil {
		return nil, err
	}
	info, err := b.fs.Lstat(resolved)
	return info, wrapPathError("stat", name, err)
}

// Lstat does not follow a symlink in the final component.
func (b *BillyFS) Lstat(name string) (fs.FileInfo, error) {
	resolved, err := b.resolveParent(name)
	if err != nil {
		return nil, err
	}
	info, err := b.fs.Lstat(resolved)
	return info, wrapPathError("lstat", name, err)
}

// ReadDir lists name in filename order.
func (b *BillyFS) ReadDir(name string) ([]fs.FileInfo, error) {
	resolved, err := b.canonical(name)
	if err != nil {
		return nil, err
	}
	infos, err := b.fs.ReadDir(resolved)
	return infos, wrapPathError("readdir", name, err)
}

// SameFile canonicalises both paths and compares the results.
func (b *BillyFS) SameFile(a, c string) (bool, error) {
	ca, err := b.canonical(a)
	if err != nil {
		return false, err
	}
	cc, err := b.canonical(c)
	if err != nil {
		return false, err
	}
	if b.caseInsensitive {
		return foldPath(ca) == foldPath(cc), nil
	}
	return ca == cc, nil
}

// canonical resolves every symlink along name and returns the physical path.
// The final component must exist.
func (b *BillyFS) canonical(name string) (string, error) {
	sep := string(filepath.Separator)
	pending := splitPath(name)
	resolved := sep
	hops := 0
	for len(pending) > 0 {
		comp := pending[0]
		pending = pending[1:]
		switch comp {
		case ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}
		next := filepath.Join(resolved, comp)
		info, err := b.fs.Lstat(next)
		if err != nil {
			return "", wrapPathError("lstat", name, err)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			resolved = next
			continue
		}
		hops++
		if hops > maxSymlinkHops {
			return "", &fs.PathError{Op: "resolve", Path: name, Err: ErrSymlinkLoop}
		}
		target, err := b.fs.Readlink(next)
		if err != nil {
			return "", wrapPathError("readlink", name, err)
		}
		if filepath.IsAbs(target) || strings.HasPrefix(target, sep) {
			resolved = sep
		}
		pending = append(splitPath(target), pending...)
	}
	return resolved, nil
}

// resolveParent canonicalises the directory part of name and rejoins the
// final component untouched.
func (b *BillyFS) resolveParent(name string) (string, error) {
	parts := splitPath(name)
	if len(parts) == 0 {
		return string(filepath.Separator), nil
	}
	last := parts[len(parts)-1]
	parent, err := b.canonical(filepath.Join(append([]string{string(filepath.Separator)}, parts[:len(parts)-1]...)...))
	if err != nil {
		return "", err
	}
	if last == "." || last == ".." {
		return b.canonical(filepath.Join(parent, last))
	}
	return filepath.Join(parent, last), nil
}

func splitPath(p string) []string {
	parts := strings.Split(filepath.ToSlash(p), "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func foldPath(p string) string {
	return cases.Fold().String(norm.NFC.String(p))
}

func wrapPathError(op, name string, err error) error {
	if err == nil {
		return nil
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return err
	}
	return &fs.PathError{Op: op, Path: name, Err: err}
}
