package preflight

import (
	"path/filepath"

	"autolink/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Path   string
	Passed bool
	Detail string
}

// RunAll checks the library directory and every root directory in order.
func RunAll(cfg *config.Config, roots []string) []Result {
	var results []Result

	if cfg != nil && cfg.Paths.LibraryDB != "" {
		results = append(results, CheckDirectoryAccess("Library directory", filepath.Dir(cfg.Paths.LibraryDB)))
	}
	for _, root := range roots {
		results = append(results, CheckRootAccess(root))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
