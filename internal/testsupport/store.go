package testsupport

import (
	"context"
	"testing"

	"autolink/internal/bib"
	"autolink/internal/config"
	"autolink/internal/library"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg.Paths.LibraryDB)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddEntry stores an entry whose file field lists paths.
func AddEntry(t testing.TB, store *library.Store, key string, paths ...string) *bib.Entry {
	t.Helper()

	entry := &bib.Entry{Key: key, Type: "article"}
	for _, p := range paths {
		entry.AddFile(bib.FileLink{Path: p})
	}
	if err := store.AddEntry(context.Background(), entry); err != nil {
		t.Fatalf("store.AddEntry: %v", err)
	}
	return entry
}
