package main

import (
	"errors"
	"testing"

	"autolink/internal/bib"
	"autolink/internal/library"
)

func TestEntryLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "entry", "add", "smith2020",
		"--type", "article",
		"--field", "title=Deep Things",
		"--file", "smith.pdf",
		"--file", "https://example.org/smith",
	)
	requireContains(t, out, "Added entry smith2020 (2 files)")

	var listed []bib.Entry
	decodeJSON(t, mustRunCLI(t, env, "entry", "list", "--json"), &listed)
	if len(listed) != 1 || listed[0].Key != "smith2020" {
		t.Fatalf("unexpected entries: %+v", listed)
	}

	var shown bib.Entry
	decodeJSON(t, mustRunCLI(t, env, "entry", "show", "smith2020", "--json"), &shown)
	if shown.Fields["title"] != "Deep Things" || shown.Type != "article" {
		t.Fatalf("unexpected entry: %+v", shown)
	}
	if len(shown.Files) != 2 || shown.Files[0].FileType != "PDF" {
		t.Fatalf("unexpected files: %+v", shown.Files)
	}

	out = mustRunCLI(t, env, "entry", "list")
	requireContains(t, out, "Deep Things")

	if _, _, err := runCLI(t, env, "entry", "add", "smith2020"); !errors.Is(err, library.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	mustRunCLI(t, env, "entry", "remove", "smith2020")
	if _, _, err := runCLI(t, env, "entry", "show", "smith2020"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryAddRejectsMalformedField(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "entry", "add", "k", "--field", "novalue"); err == nil {
		t.Fatal("expected error for field without '='")
	}
}
