package bib

import (
	"strings"
)

// FileLink is a reference from an entry to an external file. Path is either
// absolute or relative to one of the configured root directories and may
// point at a file that no longer exists.
type FileLink struct {
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
	FileType    string `json:"file_type,omitempty"`
}

// IsOnline reports whether the link names a URL rather than a local file.
func (l FileLink) IsOnline() bool {
	idx := strings.Index(l.Path, "://")
	if idx <= 0 {
		return false
	}
	for _, r := range l.Path[:idx] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

// FileName returns the final path segment of the link. Both slash styles are
// treated as separators so paths recorded on another platform still yield
// their filename.
func (l FileLink) FileName() string {
	return BaseName(l.Path)
}

// BaseName returns the last element of a '/' or '\' separated path, ignoring
// trailing separators. It returns "" for paths without a final element.
func BaseName(p string) string {
	p = strings.TrimRight(p, `/\`)
	if idx := strings.LastIndexAny(p, `/\`); idx >= 0 {
		p = p[idx+1:]
	}
	if p == "." || p == ".." {
		return ""
	}
	return p
}

// Entry is a single bibliographic record.
type Entry struct {
	ID     string            `json:"id"`
	Key    string            `json:"key"`
	Type   string            `json:"type,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Files  []FileLink        `json:"files,omitempty"`
}

// ExpectedFileNames returns the base filename of every path referenced by the
// entry's file field, whether or not the file currently exists. Empty names
// are dropped and duplicates removed, preserving first-seen order.
func (e *Entry) ExpectedFileNames() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Files))
	seen := make(map[string]struct{}, len(e.Files))
	for _, link := range e.Files {
		name := link.FileName()
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// ExistingLinks returns a copy of the entry's file links.
func (e *Entry) ExistingLinks() []FileLink {
	if e == nil || len(e.Files) == 0 {
		return nil
	}
	out := make([]FileLink, len(e.Files))
	copy(out, e.Files)
	return out
}

// AddFile appends a link to the entry.
func (e *Entry) AddFile(link FileLink) {
	e.Files = append(e.Files, link)
}

// FileField renders the entry's links in file field encoding.
func (e *Entry) FileField() string {
	if e == nil {
		return ""
	}
	return FormatFileField(e.Files)
}

// Field returns a bibliographic field value by case-insensitive name.
func (e *Entry) Field(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	if v, ok := e.Fields[name]; ok {
		return v, true
	}
	for k, v := range e.Fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := &Entry{ID: e.ID, Key: e.Key, Type: e.Type, Files: e.ExistingLinks()}
	if e.Fields != nil {
		out.Fields = make(map[string]string, len(e.Fields))
		for k, v := range e.Fields {
			out.Fields[k] = v
		}
	}
	return out
}
