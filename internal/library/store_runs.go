package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const runColumns = "id, started_at, finished_at, entries_processed, links_added, error_count, dry_run, reverted_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		dryRun      int
		revertedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&run.EntriesProcessed,
		&run.LinksAdded,
		&run.ErrorCount,
		&dryRun,
		&revertedRaw,
	); err != nil {
		return nil, err
	}
	run.DryRun = dryRun != 0
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	if revertedRaw.Valid {
		if reverted, err := parseTimeString(revertedRaw.String); err == nil {
			run.RevertedAt = &reverted
		}
	}
	return &run, nil
}

// BeginRun records the start of a link run and returns it.
func (s *Store) BeginRun(ctx context.Context, dryRun bool) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
	}
	_, err := s.execWithRetry(ctx,
		"INSERT INTO runs (id, started_at, dry_run) VALUES (?, ?, ?)",
		run.ID, formatTime(run.StartedAt), boolToInt(dryRun),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the run's totals and completion time.
func (s *Store) FinishRun(ctx context.Context, runID string, summary Summary) error {
	finished := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, entries_processed = ?, links_added = ?, error_count = ?
         WHERE id = ?`,
		nullableTime(&finished), summary.EntriesProcessed, summary.LinksAdded, summary.ErrorCount, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return requireAffected(res, "run", runID)
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by its full ID or a unique prefix of it.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("run %q: %w", id, ErrNotFound)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT "+runColumns+" FROM runs WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2",
		id, stripLikeWildcards(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == id {
			return run, nil
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("run %q: %w", id, ErrNotFound)
	case 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("run prefix %q is ambiguous", id)
	}
}

// stripLikeWildcards drops LIKE wildcards from a run ID prefix; UUIDs never
// contain them.
func stripLikeWildcards(value string) string {
	value = strings.ReplaceAll(value, "%", "")
	return strings.ReplaceAll(value, "_", "")
}

// Changes returns the journal of a run in application order.
func (s *Store) Changes(ctx context.Context, runID string) ([]Change, error) {
	return queryChanges(ensureContext(ctx), s.db, runID)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryChanges(ctx context.Context, q queryer, runID string) ([]Change, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT seq, run_id, entry_id, old_value, new_value, created_at FROM changes WHERE run_id = ? ORDER BY seq",
		runID)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var (
			change     Change
			createdRaw string
		)
		if err := rows.Scan(&change.Seq, &change.RunID, &change.EntryID, &change.OldValue, &change.NewValue, &createdRaw); err != nil {
			return nil, err
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			change.CreatedAt = created
		}
		changes = append(changes, change)
	}
	return changes, rows.Err()
}

// RevertRun restores every entry the run changed to its file field from
// before the run. It refuses, changing nothing, when any of those entries
// was modified afterwards or deleted.
func (s *Store) RevertRun(ctx context.Context, runID string) (*RevertResult, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Reverted() {
		return nil, fmt.Errorf("run %s: %w", run.ID, ErrAlreadyReverted)
	}

	result := &RevertResult{RunID: run.ID}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		changes, err := queryChanges(ctx, tx, run.ID)
		if err != nil {
			return err
		}

		type restore struct {
			entryID  string
			original string
			latest   string
		}
		var order []string
		byEntry := make(map[string]*restore)
		for _, change := range changes {
			r, ok := byEntry[change.EntryID]
			if !ok {
				r = &restore{entryID: change.EntryID, original: change.OldValue}
				byEntry[change.EntryID] = r
				order = append(order, change.EntryID)
			}
			r.latest = change.NewValue
		}

		now := formatTime(time.Now())
		for _, entryID := range order {
			r := byEntry[entryID]
			var current string
			err := tx.QueryRowContext(ctx, "SELECT file_field FROM entries WHERE id = ?", entryID).Scan(&current)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: entry %s was deleted", ErrRevertConflict, entryID)
			}
			if err != nil {
				return fmt.Errorf("read entry %s: %w", entryID, err)
			}
			if current != r.latest {
				return fmt.Errorf("%w: entry %s", ErrRevertConflict, entryID)
			}
			if _, err := tx.ExecContext(ctx,
				"UPDATE entries SET file_field = ?, updated_at = ? WHERE id = ?",
				r.original, now, entryID); err != nil {
				return fmt.Errorf("restore entry %s: %w", entryID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, "UPDATE runs SET reverted_at = ? WHERE id = ?", now, run.ID); err != nil {
			return fmt.Errorf("mark run reverted: %w", err)
		}
		result.Entries = len(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
