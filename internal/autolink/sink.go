package autolink

import (
	"context"

	"autolink/internal/bib"
)

// Sink applies new links to an entry. Linker calls Apply from a single
// goroutine, in input order.
type Sink interface {
	Apply(ctx context.Context, entry *bib.Entry, links []bib.FileLink) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, entry *bib.Entry, links []bib.FileLink) error

// Apply calls f.
func (f SinkFunc) Apply(ctx context.Context, entry *bib.Entry, links []bib.FileLink) error {
	return f(ctx, entry, links)
}

// InPlace appends links to the entry in memory and persists nothing.
type InPlace struct{}

// Apply appends links to entry.
func (InPlace) Apply(_ context.Context, entry *bib.Entry, links []bib.FileLink) error {
	for _, link := range links {
		entry.AddFile(link)
	}
	return nil
}

// DryRun leaves entries untouched; the result still lists what would change.
type DryRun struct{}

// Apply does nothing.
func (DryRun) Apply(context.Context, *bib.Entry, []bib.FileLink) error {
	return nil
}

// persists reports whether a successful Apply on sink changes an entry.
func persists(sink Sink) bool {
	switch sink.(type) {
	case DryRun, *DryRun:
		return false
	}
	return true
}
