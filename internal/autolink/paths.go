package autolink

import (
	"path/filepath"
	"strings"

	"autolink/internal/bib"
	"autolink/internal/fsys"
)

// FileExtension returns the lowercased text after the last '.' in name. A
// name with no dot, a leading dot only, or a trailing dot has no extension.
func FileExtension(name string) (string, bool) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return "", false
	}
	return strings.ToLower(name[idx+1:]), true
}

// ResolveLink locates link on disk. Absolute paths are checked as they are;
// relative paths are tried beneath each root in order and the first that
// exists wins. Online links never resolve.
func ResolveLink(filesystem fsys.FS, link bib.FileLink, roots []string) (string, bool) {
	if link.IsOnline() || strings.TrimSpace(link.Path) == "" {
		return "", false
	}
	p := filepath.FromSlash(link.Path)
	if filepath.IsAbs(p) {
		p = filepath.Clean(p)
		if _, err := filesystem.Stat(p); err != nil {
			return "", false
		}
		return p, true
	}
	for _, root := range roots {
		candidate := filepath.Join(root, p)
		if _, err := filesystem.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// Relativize expresses path relative to the first root that lexically
// contains it, using '/' separators. Paths outside every root are returned
// cleaned but absolute.
func Relativize(path string, roots []string) string {
	clean := filepath.Clean(path)
	for _, root := range roots {
		rel, err := filepath.Rel(filepath.Clean(root), clean)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel)
	}
	return clean
}

func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	seen := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		clean := filepath.Clean(root)
		if abs, err := filepath.Abs(clean); err == nil {
			clean = abs
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
