package autolink

import (
	"errors"
	"fmt"
	"log/slog"

	"autolink/internal/bib"
	"autolink/internal/filetype"
	"autolink/internal/fsys"
	"autolink/internal/logging"
	"autolink/internal/scan"
)

// TypeResolver maps a lowercased extension to a file type name.
type TypeResolver interface {
	ResolveExtension(ext string) (string, bool)
}

// MatchCandidate is an entry paired with a discovered file whose name the
// entry expects.
type MatchCandidate struct {
	Entry *bib.Entry
	File  scan.DiscoveredFile
}

// IdentityError reports a failed same-file comparison. The candidate is kept
// when this happens.
type IdentityError struct {
	Candidate string
	Other     string
	Err       error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("compare %s with %s: %v", e.Candidate, e.Other, e.Err)
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

// Matcher turns scan results into new links for one entry at a time. It holds
// no mutable state and is safe for concurrent use.
type Matcher struct {
	fs     fsys.FS
	roots  []string
	types  TypeResolver
	logger *slog.Logger
}

// MatcherOption customises a Matcher.
type MatcherOption func(*Matcher)

// WithMatcherLogger sets the logger used for identity failures.
func WithMatcherLogger(logger *slog.Logger) MatcherOption {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logging.NewComponentLogger(logger, "matcher")
		}
	}
}

// NewMatcher builds a Matcher. roots are cleaned, made absolute and
// deduplicated; their order decides relativization and link resolution. A
// nil resolver types every file as filetype.UnknownName.
func NewMatcher(filesystem fsys.FS, roots []string, types TypeResolver, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		fs:     filesystem,
		roots:  normalizeRoots(roots),
		types:  types,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Roots returns the matcher's root directories in search order.
func (m *Matcher) Roots() []string {
	out := make([]string, len(m.roots))
	copy(out, m.roots)
	return out
}

// FindCandidates returns the discovered files whose base name exactly equals
// a filename the entry's file field expects, in discovered order.
func (m *Matcher) FindCandidates(entry *bib.Entry, discovered []scan.DiscoveredFile) []MatchCandidate {
	expected := entry.ExpectedFileNames()
	if len(expected) == 0 {
		return nil
	}
	names := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		names[name] = struct{}{}
	}
	var candidates []MatchCandidate
	for _, file := range discovered {
		if _, ok := names[file.Name]; ok {
			candidates = append(candidates, MatchCandidate{Entry: entry, File: file})
		}
	}
	return candidates
}

// Match returns the links to append to entry. The error joins any
// IdentityErrors met along the way; the returned links are valid either way.
func (m *Matcher) Match(entry *bib.Entry, discovered []scan.DiscoveredFile) ([]bib.FileLink, error) {
	outcome := m.match(entry, discovered)
	return outcome.links, errors.Join(outcome.identityErrs...)
}

type matchOutcome struct {
	links         []bib.FileLink
	candidates    int
	alreadyLinked int
	identityErrs  []error
}

func (m *Matcher) match(entry *bib.Entry, discovered []scan.DiscoveredFile) matchOutcome {
	var outcome matchOutcome
	candidates := m.FindCandidates(entry, discovered)
	outcome.candidates = len(candidates)
	if len(candidates) == 0 {
		return outcome
	}

	var linked []string
	for _, link := range entry.ExistingLinks() {
		if resolved, ok := ResolveLink(m.fs, link, m.roots); ok {
			linked = append(linked, resolved)
		}
	}

	logger := m.logger.With(logging.String(logging.FieldEntryKey, entry.Key))
	accepted := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		path := candidate.File.AbsolutePath
		if m.sameAsAny(logger, path, linked, &outcome) {
			outcome.alreadyLinked++
			continue
		}
		if m.sameAsAny(logger, path, accepted, &outcome) {
			continue
		}
		accepted = append(accepted, path)
		outcome.links = append(outcome.links, m.linkFor(candidate.File))
	}
	return outcome
}

// sameAsAny reports whether path is the same file as any of others. A failed
// comparison counts as different.
func (m *Matcher) sameAsAny(logger *slog.Logger, path string, others []string, outcome *matchOutcome) bool {
	for _, other := range others {
		if path == other {
			return true
		}
		same, err := m.fs.SameFile(path, other)
		if err != nil {
			idErr := &IdentityError{Candidate: path, Other: other, Err: err}
			outcome.identityErrs = append(outcome.identityErrs, idErr)
			logging.WarnWithContext(logger, "file identity check failed", "identity_check_failed",
				logging.String(logging.FieldPath, path),
				logging.String("other", other),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that both paths are readable"),
				logging.String(logging.FieldImpact, "file treated as not yet linked"),
			)
			continue
		}
		if same {
			return true
		}
	}
	return false
}

func (m *Matcher) linkFor(file scan.DiscoveredFile) bib.FileLink {
	typeName := filetype.UnknownName
	if ext, ok := FileExtension(file.Name); ok && m.types != nil {
		if name, found := m.types.ResolveExtension(ext); found {
			typeName = name
		}
	}
	return bib.FileLink{
		Path:     Relativize(file.AbsolutePath, m.roots),
		FileType: typeName,
	}
}
