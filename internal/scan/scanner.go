package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"autolink/internal/fsys"
	"autolink/internal/logging"
)

// DefaultConcurrency bounds how many roots are walked at once.
const DefaultConcurrency = 4

// ErrNotDirectory is reported for roots that exist but are not directories.
var ErrNotDirectory = errors.New("not a directory")

// DiscoveredFile is a regular file found beneath a root.
type DiscoveredFile struct {
	AbsolutePath string `json:"absolute_path"`
	Name         string `json:"name"`
	Root         string `json:"root"`
}

// PathError pairs a directory or file with the failure encountered there.
type PathError struct {
	Path string
	Err  error
}

func (e PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e PathError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a scan. Files are sorted by AbsolutePath; Errors
// keep root order, with nested failures in walk order.
type Result struct {
	Files    []DiscoveredFile
	Errors   []PathError
	Duration time.Duration
}

// Scanner walks root directories through an fsys.FS.
type Scanner struct {
	fs          fsys.FS
	logger      *slog.Logger
	concurrency int
}

// Option customises a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for skipped directories.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "scanner")
		}
	}
}

// WithConcurrency sets how many roots are walked in parallel. Values below
// one are raised to one.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
	}
}

// New builds a Scanner over filesystem.
func New(filesystem fsys.FS, opts ...Option) *Scanner {
	s := &Scanner{
		fs:          filesystem,
		logger:      logging.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type rootResult struct {
	files    []DiscoveredFile
	errors   []PathError
	complete bool
}

// Scan walks every root and returns the regular files found. The returned
// error is non-nil only when ctx is cancelled; results from roots that
// finished before cancellation are still returned.
func (s *Scanner) Scan(ctx context.Context, roots []string) (Result, error) {
	started := time.Now()
	results := make([]rootResult, len(roots))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, root := range roots {
		if ctx.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, root string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.scanRoot(ctx, root)
		}(i, root)
	}
	wg.Wait()

	result := merge(results)
	result.Duration = time.Since(started)
	s.logger.Debug("scan finished",
		logging.Int("roots", len(roots)),
		logging.Int("files", len(result.Files)),
		logging.Int("errors", len(result.Errors)),
		logging.Duration("duration", result.Duration),
	)
	return result, ctx.Err()
}

func merge(results []rootResult) Result {
	var out Result
	seen := make(map[string]struct{})
	for _, r := range results {
		if !r.complete {
			continue
		}
		out.Errors = append(out.Errors, r.errors...)
		for _, f := range r.files {
			if _, ok := seen[f.AbsolutePath]; ok {
				continue
			}
			seen[f.AbsolutePath] = struct{}{}
			out.Files = append(out.Files, f)
		}
	}
	sort.Slice(out.Files, func(i, j int) bool {
		return out.Files[i].AbsolutePath < out.Files[j].AbsolutePath
	})
	return out
}

func (s *Scanner) scanRoot(ctx context.Context, root string) rootResult {
	clean := filepath.Clean(root)
	if abs, err := filepath.Abs(clean); err == nil {
		clean = abs
	}
	logger := s.logger.With(logging.String(logging.FieldRoot, clean))

	fail := func(err error) rootResult {
		logging.WarnWithContext(logger, "root directory unreadable", "scan_root_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the directory exists and is readable"),
			logging.String(logging.FieldImpact, "no files discovered under this root"),
		)
		return rootResult{errors: []PathError{{Path: clean, Err: err}}, complete: true}
	}

	info, err := s.fs.Stat(clean)
	if err != nil {
		return fail(err)
	}
	if !info.IsDir() {
		return fail(ErrNotDirectory)
	}
	entries, err := s.fs.ReadDir(clean)
	if err != nil {
		return fail(err)
	}

	w := walker{fs: s.fs, logger: logger, root: clean}
	if err := w.visit(ctx, clean, entries); err != nil {
		return rootResult{}
	}
	return rootResult{files: w.files, errors: w.errors, complete: true}
}

type walker struct {
	fs     fsys.FS
	logger *slog.Logger
	root   string
	files  []DiscoveredFile
	errors []PathError
}

// visit processes one listed directory and recurses into real
// subdirectories. It returns only the context error.
func (w *walker) visit(ctx context.Context, dir string, entries []fs.FileInfo) error {
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		mode := entry.Mode()
		switch {
		case mode.IsDir():
			if err := ctx.Err(); err != nil {
				return err
			}
			children, err := w.fs.ReadDir(path)
			if err != nil {
				w.skipDir(path, err)
				continue
			}
			if err := w.visit(ctx, path, children); err != nil {
				return err
			}
		case mode&fs.ModeSymlink != 0:
			target, err := w.fs.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				continue
			}
			w.add(path, entry.Name())
		case mode.IsRegular():
			w.add(path, entry.Name())
		}
	}
	return nil
}

func (w *walker) add(path, name string) {
	w.files = append(w.files, DiscoveredFile{AbsolutePath: path, Name: name, Root: w.root})
}

func (w *walker) skipDir(path string, err error) {
	w.errors = append(w.errors, PathError{Path: path, Err: err})
	logging.WarnWithContext(w.logger, "skipping unreadable directory", "scan_dir_skipped",
		logging.String(logging.FieldPath, path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check directory permissions"),
		logging.String(logging.FieldImpact, "files in this directory are not discovered"),
	)
}
