package library

import "time"

// Run is one recorded invocation of the auto-linker.
type Run struct {
	ID               string     `json:"id"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	EntriesProcessed int        `json:"entries_processed"`
	LinksAdded       int        `json:"links_added"`
	ErrorCount       int        `json:"error_count"`
	DryRun           bool       `json:"dry_run"`
	RevertedAt       *time.Time `json:"reverted_at,omitempty"`
}

// Finished reports whether the run recorded its summary.
func (r *Run) Finished() bool {
	return r != nil && r.FinishedAt != nil
}

// Reverted reports whether the run's changes were undone.
func (r *Run) Reverted() bool {
	return r != nil && r.RevertedAt != nil
}

// Summary holds the totals written when a run finishes.
type Summary struct {
	EntriesProcessed int
	LinksAdded       int
	ErrorCount       int
}

// Change is the file field of one entry before and after a run applied
// links to it.
type Change struct {
	Seq       int64     `json:"seq"`
	RunID     string    `json:"run_id"`
	EntryID   string    `json:"entry_id"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}

// RevertResult describes a completed revert.
type RevertResult struct {
	RunID   string
	Entries int
}
