package autolink

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"autolink/internal/bib"
	"autolink/internal/logging"
	"autolink/internal/scan"
)

// DefaultWorkers bounds concurrent entry matching.
const DefaultWorkers = 4

// PathError pairs the directory, file or entry key a failure concerns with
// its cause.
type PathError = scan.PathError

// AddedLink records one link applied to an entry.
type AddedLink struct {
	Entry *bib.Entry
	Link  bib.FileLink
}

// LinkFilesResult is the outcome of one batch. ChangedEntries follows input
// order and lists each entry once.
type LinkFilesResult struct {
	ChangedEntries []*bib.Entry
	Errors         []PathError
	Added          []AddedLink
	FilesScanned   int
}

// Linker runs a batch of entries through one scan and the matcher.
type Linker struct {
	scanner  *scan.Scanner
	matcher  *Matcher
	logger   *slog.Logger
	workers  int
	observer Observer
}

// LinkerOption customises a Linker.
type LinkerOption func(*Linker)

// WithLinkerLogger sets the batch logger.
func WithLinkerLogger(logger *slog.Logger) LinkerOption {
	return func(l *Linker) {
		if logger != nil {
			l.logger = logging.NewComponentLogger(logger, "linker")
		}
	}
}

// WithWorkers sets the matching pool size. Values below one are raised to
// one.
func WithWorkers(n int) LinkerOption {
	return func(l *Linker) {
		if n < 1 {
			n = 1
		}
		l.workers = n
	}
}

// WithObserver registers a statistics observer.
func WithObserver(observer Observer) LinkerOption {
	return func(l *Linker) {
		if observer != nil {
			l.observer = observer
		}
	}
}

// NewLinker wires a scanner and matcher into a batch runner.
func NewLinker(scanner *scan.Scanner, matcher *Matcher, opts ...LinkerOption) *Linker {
	l := &Linker{
		scanner:  scanner,
		matcher:  matcher,
		logger:   logging.NewNop(),
		workers:  DefaultWorkers,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// LinkAssociatedFiles scans the matcher's roots once, matches every entry
// against the result and applies new links through sink (InPlace when nil).
// Scan, identity and sink failures are collected in the result. The error is
// non-nil only when ctx is cancelled, in which case the partial result is
// still returned.
func (l *Linker) LinkAssociatedFiles(ctx context.Context, entries []*bib.Entry, sink Sink) (*LinkFilesResult, error) {
	if sink == nil {
		sink = InPlace{}
	}
	logger := logging.WithContext(ctx, l.logger)
	result := &LinkFilesResult{}

	roots := l.matcher.Roots()
	scanned, err := l.scanner.Scan(ctx, roots)
	result.Errors = append(result.Errors, scanned.Errors...)
	result.FilesScanned = len(scanned.Files)
	l.observer.ObserveScan(ScanStats{
		Roots:    len(roots),
		Files:    len(scanned.Files),
		Errors:   len(scanned.Errors),
		Duration: scanned.Duration,
	})
	if err != nil {
		return result, err
	}
	logger.Info("scan complete",
		logging.Int("roots", len(roots)),
		logging.Int("files", len(scanned.Files)),
		logging.Int("scan_errors", len(scanned.Errors)),
	)

	entries = uniqueEntries(entries)
	outcomes, done := l.matchAll(ctx, entries, scanned.Files)

	for i, entry := range entries {
		if !done[i] {
			continue
		}
		outcome := outcomes[i]
		stats := EntryStats{
			Candidates:     outcome.candidates,
			AlreadyLinked:  outcome.alreadyLinked,
			Proposed:       len(outcome.links),
			IdentityErrors: len(outcome.identityErrs),
		}
		for _, idErr := range outcome.identityErrs {
			var path string
			var identity *IdentityError
			if errors.As(idErr, &identity) {
				path = identity.Candidate
			}
			result.Errors = append(result.Errors, PathError{Path: path, Err: idErr})
		}
		if len(outcome.links) == 0 {
			l.observer.ObserveEntry(stats)
			continue
		}
		if err := ctx.Err(); err != nil {
			l.observer.ObserveEntry(stats)
			return result, err
		}
		if err := sink.Apply(ctx, entry, outcome.links); err != nil {
			l.observer.ObserveEntry(stats)
			result.Errors = append(result.Errors, PathError{Path: entry.Key, Err: err})
			logging.WarnWithContext(logger, "applying links failed", "link_apply_failed",
				logging.String(logging.FieldEntryKey, entry.Key),
				logging.Int("links", len(outcome.links)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "rerun the link command after fixing the library"),
				logging.String(logging.FieldImpact, "entry left unchanged"),
			)
			continue
		}
		if persists(sink) {
			stats.Applied = len(outcome.links)
		}
		l.observer.ObserveEntry(stats)
		result.ChangedEntries = append(result.ChangedEntries, entry)
		for _, link := range outcome.links {
			result.Added = append(result.Added, AddedLink{Entry: entry, Link: link})
		}
		logger.Debug("links added",
			logging.String(logging.FieldEntryKey, entry.Key),
			logging.Int("links", len(outcome.links)),
		)
	}

	logger.Info("auto-link finished",
		logging.Int("entries", len(entries)),
		logging.Int("changed", len(result.ChangedEntries)),
		logging.Int("links_added", len(result.Added)),
		logging.Int("errors", len(result.Errors)),
	)
	return result, ctx.Err()
}

// matchAll matches entries in a bounded pool. done marks entries whose
// matching ran before cancellation.
func (l *Linker) matchAll(ctx context.Context, entries []*bib.Entry, files []scan.DiscoveredFile) ([]matchOutcome, []bool) {
	outcomes := make([]matchOutcome, len(entries))
	done := make([]bool, len(entries))
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := l.workers
	if workers > len(entries) {
		workers = len(entries)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = l.matcher.match(entries[i], files)
				done[i] = true
			}
		}()
	}

feed:
	for i := range entries {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return outcomes, done
}

// uniqueEntries drops nil and repeated entries so each is matched and
// mutated once.
func uniqueEntries(entries []*bib.Entry) []*bib.Entry {
	out := make([]*bib.Entry, 0, len(entries))
	seen := make(map[*bib.Entry]struct{}, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	return out
}
