package library_test

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"autolink/internal/bib"
	"autolink/internal/library"
	"autolink/internal/testsupport"
)

func TestAddAndGetEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := &bib.Entry{
		Key:    "smith2020",
		Type:   "article",
		Fields: map[string]string{"title": "Deep Things", "year": "2020"},
		Files:  []bib.FileLink{{Description: "main", Path: "papers/smith:2020.pdf", FileType: "PDF"}},
	}
	if err := store.AddEntry(ctx, entry); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("expected entry ID to be assigned")
	}

	fetched, err := store.GetEntry(ctx, "smith2020")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if !reflect.DeepEqual(fetched, entry) {
		t.Fatalf("fetched = %#v, want %#v", fetched, entry)
	}
}

func TestAddEntryDuplicateKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.AddEntry(t, store, "dup")
	err := store.AddEntry(context.Background(), &bib.Entry{Key: "dup"})
	if !errors.Is(err, library.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestAddEntryRequiresKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if err := store.AddEntry(context.Background(), &bib.Entry{Key: "  "}); err == nil {
		t.Fatal("expected error for blank key")
	}
}

func TestListEntriesAndEntriesByKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, key := range []string{"c", "a", "b"} {
		testsupport.AddEntry(t, store, key)
	}
	entries, err := store.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	var keys []string
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	if !reflect.DeepEqual(keys, []string{"a", "b", "c"}) {
		t.Fatalf("keys = %v", keys)
	}

	selected, err := store.EntriesByKey(ctx, []string{"c", "a"})
	if err != nil {
		t.Fatalf("EntriesByKey failed: %v", err)
	}
	if len(selected) != 2 || selected[0].Key != "c" || selected[1].Key != "a" {
		t.Fatalf("unexpected selection: %+v", selected)
	}

	if _, err := store.EntriesByKey(ctx, []string{"a", "missing"}); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFilesAndDelete(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := testsupport.AddEntry(t, store, "k", "a.pdf")
	entry.AddFile(bib.FileLink{Path: "b.pdf", FileType: "PDF"})
	if err := store.UpdateFiles(ctx, entry); err != nil {
		t.Fatalf("UpdateFiles failed: %v", err)
	}
	fetched, err := store.GetEntry(ctx, "k")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if len(fetched.Files) != 2 || fetched.Files[1].Path != "b.pdf" {
		t.Fatalf("unexpected files: %+v", fetched.Files)
	}

	if err := store.DeleteEntry(ctx, "k"); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if _, err := store.GetEntry(ctx, "k"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteEntry(ctx, "k"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestFileDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	dirs, err := store.FileDirectories(ctx)
	if err != nil || dirs != nil {
		t.Fatalf("expected no directories, got %v, %v", dirs, err)
	}
	want := []string{"/refs", "attachments"}
	if err := store.SetFileDirectories(ctx, want); err != nil {
		t.Fatalf("SetFileDirectories failed: %v", err)
	}
	if err := store.SetFileDirectories(ctx, want); err != nil {
		t.Fatalf("SetFileDirectories overwrite failed: %v", err)
	}
	dirs, err = store.FileDirectories(ctx)
	if err != nil {
		t.Fatalf("FileDirectories failed: %v", err)
	}
	if !reflect.DeepEqual(dirs, want) {
		t.Fatalf("dirs = %v, want %v", dirs, want)
	}
	if err := store.SetFileDirectories(ctx, nil); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if dirs, _ := store.FileDirectories(ctx); dirs != nil {
		t.Fatalf("expected cleared directories, got %v", dirs)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	store.Close()

	db, err := sql.Open("sqlite", cfg.Paths.LibraryDB)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := library.Open(cfg.Paths.LibraryDB); !errors.Is(err, library.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := library.Open(cfg.Paths.LibraryDB)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	testsupport.AddEntry(t, store, "persisted", "a.pdf")
	store.Close()

	reopened := testsupport.MustOpenStore(t, cfg)
	entry, err := reopened.GetEntry(context.Background(), "persisted")
	if err != nil {
		t.Fatalf("GetEntry after reopen failed: %v", err)
	}
	if len(entry.Files) != 1 || entry.Files[0].Path != "a.pdf" {
		t.Fatalf("unexpected files: %+v", entry.Files)
	}
}
