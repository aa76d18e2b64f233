package bib

import "strings"

const (
	fieldSeparator  = ':'
	recordSeparator = ';'
	escapeChar      = '\\'
)

// FormatFileField encodes links as description:path:type records joined by
// ';'. Separators and backslashes inside values are escaped with '\'.
func FormatFileField(links []FileLink) string {
	if len(links) == 0 {
		return ""
	}
	var b strings.Builder
	for i, link := range links {
		if i > 0 {
			b.WriteByte(recordSeparator)
		}
		writeEscaped(&b, link.Description)
		b.WriteByte(fieldSeparator)
		writeEscaped(&b, link.Path)
		b.WriteByte(fieldSeparator)
		writeEscaped(&b, link.FileType)
	}
	return b.String()
}

func writeEscaped(b *strings.Builder, value string) {
	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case escapeChar, fieldSeparator, recordSeparator:
			b.WriteByte(escapeChar)
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
}

// ParseFileField decodes a file field value. A record with a single value is
// a bare path; otherwise the values are description, path and optional type.
// Hand-entered URLs ("https://host/a.pdf") and drive-letter paths
// ("C:\docs\a.pdf") are kept whole rather than split on ':'. A backslash
// before any character other than a separator or backslash is literal.
// Records whose path is empty are skipped.
func ParseFileField(value string) []FileLink {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var (
		links   []FileLink
		record  []string
		current strings.Builder
		raw     strings.Builder
	)
	flush := func() {
		record = append(record, current.String())
		current.Reset()
		if isBarePath(record) {
			record = append(record[:0], raw.String())
		}
		raw.Reset()
		if link, ok := recordToLink(record); ok {
			links = append(links, link)
		}
		record = record[:0]
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c == escapeChar && i+1 < len(value) && isEscapable(value[i+1]):
			i++
			current.WriteByte(value[i])
			raw.WriteByte(value[i])
		case c == fieldSeparator:
			record = append(record, current.String())
			current.Reset()
			raw.WriteByte(c)
		case c == recordSeparator:
			flush()
		default:
			current.WriteByte(c)
			raw.WriteByte(c)
		}
	}
	flush()
	return links
}

func isEscapable(c byte) bool {
	return c == escapeChar || c == fieldSeparator || c == recordSeparator
}

// isBarePath reports whether a record split on ':' is really one path: a URL
// whose scheme became the first value, or a drive letter followed by a rooted
// path.
func isBarePath(values []string) bool {
	if len(values) < 2 {
		return false
	}
	first, second := values[0], values[1]
	if strings.HasPrefix(second, "//") && isScheme(first) {
		return true
	}
	return len(values) == 2 && len(first) == 1 && isASCIILetter(first[0]) &&
		(strings.HasPrefix(second, `\`) || strings.HasPrefix(second, "/"))
}

func isScheme(s string) bool {
	if len(s) < 2 || !isASCIILetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !isASCIILetter(c) && !(c >= '0' && c <= '9') && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func recordToLink(values []string) (FileLink, bool) {
	var link FileLink
	switch len(values) {
	case 0:
		return link, false
	case 1:
		link.Path = strings.TrimSpace(values[0])
	default:
		link.Description = values[0]
		link.Path = strings.TrimSpace(values[1])
		if len(values) > 2 {
			link.FileType = strings.TrimSpace(values[2])
		}
	}
	if link.Path == "" {
		return link, false
	}
	return link, true
}
