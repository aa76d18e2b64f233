package filetype

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"autolink/internal/config"
)

// UnknownName labels files whose extension is not registered.
const UnknownName = "Unknown"

// Type describes one external file type.
type Type struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	MimeType  string `json:"mime_type,omitempty"`
}

var standardTypes = []Type{
	{Name: "PDF", Extension: "pdf", MimeType: "application/pdf"},
	{Name: "PostScript", Extension: "ps", MimeType: "application/postscript"},
	{Name: "Word", Extension: "doc", MimeType: "application/msword"},
	{Name: "Word 2007+", Extension: "docx", MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	{Name: "OpenDocument text", Extension: "odt", MimeType: "application/vnd.oasis.opendocument.text"},
	{Name: "OpenDocument spreadsheet", Extension: "ods", MimeType: "application/vnd.oasis.opendocument.spreadsheet"},
	{Name: "OpenDocument presentation", Extension: "odp", MimeType: "application/vnd.oasis.opendocument.presentation"},
	{Name: "Excel", Extension: "xls", MimeType: "application/excel"},
	{Name: "Excel 2007+", Extension: "xlsx", MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	{Name: "PowerPoint", Extension: "ppt", MimeType: "application/vnd.ms-powerpoint"},
	{Name: "PowerPoint 2007+", Extension: "pptx", MimeType: "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
	{Name: "RTF", Extension: "rtf", MimeType: "application/rtf"},
	{Name: "PNG image", Extension: "png", MimeType: "image/png"},
	{Name: "GIF image", Extension: "gif", MimeType: "image/gif"},
	{Name: "JPG image", Extension: "jpg", MimeType: "image/jpeg"},
	{Name: "JPG image", Extension: "jpeg", MimeType: "image/jpeg"},
	{Name: "TIFF image", Extension: "tiff", MimeType: "image/tiff"},
	{Name: "Text", Extension: "txt", MimeType: "text/plain"},
	{Name: "LaTeX", Extension: "tex", MimeType: "application/x-latex"},
	{Name: "CHM", Extension: "chm", MimeType: "application/mshelp"},
	{Name: "Djvu", Extension: "djvu", MimeType: "image/vnd.djvu"},
	{Name: "ePUB", Extension: "epub", MimeType: "application/epub+zip"},
	{Name: "Markdown", Extension: "md", MimeType: "text/markdown"},
	{Name: "MHT", Extension: "mht", MimeType: "multipart/related"},
	{Name: "URL", Extension: "html", MimeType: "text/html"},
}

// Registry resolves extensions to type names. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]Type
}

// NewRegistry returns a registry preloaded with the standard types.
func NewRegistry() *Registry {
	r := &Registry{
		byExt: make(map[string]Type, len(standardTypes)),
	}
	for _, t := range standardTypes {
		r.byExt[foldExtension(t.Extension)] = t
	}
	return r
}

// FromConfig returns the standard registry with the configured file types
// applied on top. A configured extension replaces the standard mapping.
func FromConfig(cfg *config.Config) (*Registry, error) {
	r := NewRegistry()
	if cfg == nil {
		return r, nil
	}
	for i, ft := range cfg.FileTypes {
		if err := r.Register(Type{Name: ft.Name, Extension: ft.Extension, MimeType: ft.MimeType}); err != nil {
			return nil, fmt.Errorf("file_types[%d]: %w", i, err)
		}
	}
	return r, nil
}

// Register adds or replaces the mapping for t.Extension.
func (r *Registry) Register(t Type) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Extension = strings.TrimPrefix(strings.TrimSpace(t.Extension), ".")
	if t.Name == "" {
		return fmt.Errorf("file type name is required")
	}
	if t.Extension == "" {
		return fmt.Errorf("file type %q: extension is required", t.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[foldExtension(t.Extension)] = t
	return nil
}

// ResolveExtension returns the type name registered for ext. A leading dot
// is ignored and the comparison is case-insensitive.
func (r *Registry) ResolveExtension(ext string) (string, bool) {
	t, ok := r.Lookup(ext)
	if !ok {
		return "", false
	}
	return t.Name, true
}

// Lookup returns the full type registered for ext.
func (r *Registry) Lookup(ext string) (Type, bool) {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return Type{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byExt[foldExtension(ext)]
	return t, ok
}

// List returns all registered types ordered by name, then extension.
func (r *Registry) List() []Type {
	r.mu.RLock()
	out := make([]Type, 0, len(r.byExt))
	for _, t := range r.byExt {
		out = append(out, t)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Extension < out[j].Extension
	})
	return out
}

// foldExtension case-folds ext. cases.Caser carries state, so each call
// gets its own.
func foldExtension(ext string) string {
	return cases.Fold().String(ext)
}
