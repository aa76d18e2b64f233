package autolink

import "time"

// ScanStats summarises the scan at the start of a batch.
type ScanStats struct {
	Roots    int
	Files    int
	Errors   int
	Duration time.Duration
}

// EntryStats summarises matching for one entry. Proposed counts links the
// matcher produced; Applied counts those a sink persisted, which is zero when
// Apply fails or the sink is DryRun.
type EntryStats struct {
	Candidates     int
	AlreadyLinked  int
	Proposed       int
	Applied        int
	IdentityErrors int
}

// Observer receives batch statistics, typically to export metrics.
type Observer interface {
	ObserveScan(ScanStats)
	ObserveEntry(EntryStats)
}

type nopObserver struct{}

func (nopObserver) ObserveScan(ScanStats)   {}
func (nopObserver) ObserveEntry(EntryStats) {}
