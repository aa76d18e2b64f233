// Package metrics exports auto-link run statistics in Prometheus format.
//
// Each Recorder owns a private registry so a CLI invocation reports only its
// own run. WriteTextfile produces the node-exporter textfile format for
// collection by a textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"autolink/internal/autolink"
)

// Recorder implements autolink.Observer on Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	filesDiscovered prometheus.Counter
	scanErrors      prometheus.Counter
	scanDuration    prometheus.Histogram
	candidates      prometheus.Counter
	alreadyLinked   prometheus.Counter
	linksProposed   prometheus.Counter
	linksAdded      prometheus.Counter
	identityErrors  prometheus.Counter
	entriesChanged  prometheus.Counter
}

var _ autolink.Observer = (*Recorder)(nil)

// New builds a Recorder with its own registry.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Recorder{
		registry: registry,
		filesDiscovered: factory.NewCounter(prometheus.CounterOpts{
			Name: "autolink_files_discovered_total",
			Help: "Regular files found beneath root directories",
		}),
		scanErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "autolink_scan_errors_total",
			Help: "Directories that could not be scanned",
		}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "autolink_scan_duration_seconds",
			Help:    "Time spent scanning root directories",
			Buckets: prometheus.DefBuckets,
		}),
		candidates: factory.NewCounter(prometheus.CounterOpts{
			Name: "autolink_match_candidates_total",
			Help: "Discovered files whose name an entry expects",
		}),
		alreadyLinked: factory.NewCounter(prometheus.CounterOpts{
			Name: "autolink_already_linked_total",
			Help: "Candidates dropped because the entry already links the same file",
		}),
		linksProposed: factory.NewCounter(prometheus.CounterOpts{
			Name: "autolink_links_proposed_total",
			Help: "New links the matcher found for entries, applied or not",
		}),
		linksAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "autolink_links_added_total",
			Help: "New links written to entries",
		}),
		identityErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "autolink_identity_errors_total",
			Help: "File identity comparisons that failed",
		}),
		entriesChanged: factory.NewCounter(prometheus.CounterOpts{
			Name: "autolink_entries_changed_total",
			Help: "Entries that had at least one new link written",
		}),
	}
}

// ObserveScan records scan totals.
func (r *Recorder) ObserveScan(stats autolink.ScanStats) {
	r.filesDiscovered.Add(float64(stats.Files))
	r.scanErrors.Add(float64(stats.Errors))
	r.scanDuration.Observe(stats.Duration.Seconds())
}

// ObserveEntry records per-entry match totals.
func (r *Recorder) ObserveEntry(stats autolink.EntryStats) {
	r.candidates.Add(float64(stats.Candidates))
	r.alreadyLinked.Add(float64(stats.AlreadyLinked))
	r.linksProposed.Add(float64(stats.Proposed))
	r.linksAdded.Add(float64(stats.Applied))
	r.identityErrors.Add(float64(stats.IdentityErrors))
	if stats.Applied > 0 {
		r.entriesChanged.Inc()
	}
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the current values to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
