package library_test

import (
	"context"
	"errors"
	"testing"

	"autolink/internal/bib"
	"autolink/internal/library"
	"autolink/internal/testsupport"
)

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, true)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if run.Finished() {
		t.Fatal("new run should not be finished")
	}
	if err := store.FinishRun(ctx, run.ID, library.Summary{EntriesProcessed: 3, LinksAdded: 2, ErrorCount: 1}); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	fetched, err := store.GetRun(ctx, run.ID[:8])
	if err != nil {
		t.Fatalf("GetRun by prefix failed: %v", err)
	}
	if fetched.ID != run.ID || !fetched.DryRun || !fetched.Finished() {
		t.Fatalf("unexpected run: %+v", fetched)
	}
	if fetched.EntriesProcessed != 3 || fetched.LinksAdded != 2 || fetched.ErrorCount != 1 {
		t.Fatalf("unexpected totals: %+v", fetched)
	}

	second, err := store.BeginRun(ctx, false)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID {
		t.Fatalf("expected newest run first, got %+v", runs)
	}

	if _, err := store.GetRun(ctx, "no-such-run"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.FinishRun(ctx, "no-such-run", library.Summary{}); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound finishing unknown run, got %v", err)
	}
}

func TestSinkJournalsAndRevertRestores(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := testsupport.AddEntry(t, store, "k", "old/paper.pdf")
	original := entry.FileField()

	run, err := store.BeginRun(ctx, false)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	sink := store.Sink(run.ID)
	if err := sink.Apply(ctx, entry, []bib.FileLink{{Path: "new/paper.pdf", FileType: "PDF"}}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := sink.Apply(ctx, entry, []bib.FileLink{{Path: "other/paper.pdf", FileType: "PDF"}}); err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if len(entry.Files) != 3 {
		t.Fatalf("expected in-memory entry updated, got %+v", entry.Files)
	}

	stored, err := store.GetEntry(ctx, "k")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if stored.FileField() != entry.FileField() {
		t.Fatalf("stored %q, in memory %q", stored.FileField(), entry.FileField())
	}

	changes, err := store.Changes(ctx, run.ID)
	if err != nil {
		t.Fatalf("Changes failed: %v", err)
	}
	if len(changes) != 2 || changes[0].OldValue != original || changes[1].NewValue != entry.FileField() {
		t.Fatalf("unexpected journal: %+v", changes)
	}

	result, err := store.RevertRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("RevertRun failed: %v", err)
	}
	if result.Entries != 1 {
		t.Fatalf("expected 1 reverted entry, got %d", result.Entries)
	}
	reverted, err := store.GetEntry(ctx, "k")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if reverted.FileField() != original {
		t.Fatalf("reverted field %q, want %q", reverted.FileField(), original)
	}

	if _, err := store.RevertRun(ctx, run.ID); !errors.Is(err, library.ErrAlreadyReverted) {
		t.Fatalf("expected ErrAlreadyReverted, got %v", err)
	}
}

func TestRevertConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	touched := testsupport.AddEntry(t, store, "touched", "a.pdf")
	edited := testsupport.AddEntry(t, store, "edited", "b.pdf")

	run, err := store.BeginRun(ctx, false)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	sink := store.Sink(run.ID)
	for _, e := range []*bib.Entry{touched, edited} {
		if err := sink.Apply(ctx, e, []bib.FileLink{{Path: "x/" + e.Key + ".pdf"}}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
	}
	touchedAfterRun := touched.FileField()

	edited.AddFile(bib.FileLink{Path: "manual.pdf"})
	if err := store.UpdateFiles(ctx, edited); err != nil {
		t.Fatalf("UpdateFiles failed: %v", err)
	}

	if _, err := store.RevertRun(ctx, run.ID); !errors.Is(err, library.ErrRevertConflict) {
		t.Fatalf("expected ErrRevertConflict, got %v", err)
	}
	current, err := store.GetEntry(ctx, "touched")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if current.FileField() != touchedAfterRun {
		t.Fatal("conflicting revert must not change any entry")
	}
	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched.Reverted() {
		t.Fatal("run should not be marked reverted")
	}
}

func TestSinkUnknownEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, false)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	ghost := &bib.Entry{ID: "missing", Key: "ghost"}
	err = store.Sink(run.ID).Apply(ctx, ghost, []bib.FileLink{{Path: "a.pdf"}})
	if !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(ghost.Files) != 0 {
		t.Fatal("failed apply must not modify the entry")
	}
}

func TestLockIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := library.Lock(cfg.Paths.LibraryDB)
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	if _, err := library.Lock(cfg.Paths.LibraryDB); !errors.Is(err, library.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	again, err := library.Lock(cfg.Paths.LibraryDB)
	if err != nil {
		t.Fatalf("Lock after unlock failed: %v", err)
	}
	_ = again.Unlock()
}
