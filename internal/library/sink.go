package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"autolink/internal/autolink"
	"autolink/internal/bib"
)

// RunSink persists links applied during a run and journals each change.
type RunSink struct {
	store *Store
	runID string
}

var _ autolink.Sink = (*RunSink)(nil)

// Sink returns an autolink.Sink that writes through to the library under
// runID.
func (s *Store) Sink(runID string) *RunSink {
	return &RunSink{store: s, runID: runID}
}

// Apply appends links to the stored file field of entry, records the change
// and then updates entry in memory. Nothing changes if any step fails.
func (r *RunSink) Apply(ctx context.Context, entry *bib.Entry, links []bib.FileLink) error {
	if entry == nil || len(links) == 0 {
		return nil
	}
	var updated []bib.FileLink
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, "SELECT file_field FROM entries WHERE id = ?", entry.ID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("entry %q: %w", entry.Key, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("read entry %q: %w", entry.Key, err)
		}

		updated = append(bib.ParseFileField(current), links...)
		next := bib.FormatFileField(updated)
		now := formatTime(time.Now())
		if _, err := tx.ExecContext(ctx,
			"UPDATE entries SET file_field = ?, updated_at = ? WHERE id = ?",
			next, now, entry.ID); err != nil {
			return fmt.Errorf("update entry %q: %w", entry.Key, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO changes (run_id, entry_id, old_value, new_value, created_at) VALUES (?, ?, ?, ?, ?)",
			r.runID, entry.ID, current, next, now); err != nil {
			return fmt.Errorf("journal change for %q: %w", entry.Key, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	entry.Files = updated
	return nil
}
