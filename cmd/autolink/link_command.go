package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"autolink/internal/autolink"
	"autolink/internal/bib"
	"autolink/internal/config"
	"autolink/internal/fsys"
	"autolink/internal/library"
	"autolink/internal/logging"
	"autolink/internal/metrics"
	"autolink/internal/scan"
)

type linkOptions struct {
	roots       []string
	dryRun      bool
	workers     int
	metricsFile string
	asJSON      bool
}

type linkOutput struct {
	RunID          string          `json:"run_id"`
	DryRun         bool            `json:"dry_run"`
	Roots          []string        `json:"roots"`
	FilesScanned   int             `json:"files_scanned"`
	EntriesChanged int             `json:"entries_changed"`
	Added          []addedLinkView `json:"added"`
	Errors         []pathErrorView `json:"errors"`
}

type addedLinkView struct {
	Key  string       `json:"key"`
	Link bib.FileLink `json:"link"`
}

func newLinkCommand(ctx *commandContext) *cobra.Command {
	var opts linkOptions

	cmd := &cobra.Command{
		Use:   "link [KEY...]",
		Short: "Link files found beneath the roots to entries that expect them",
		Long: "Scans the root directories once and adds every file whose name an entry\n" +
			"already lists but which the entry does not link yet. Without keys every\n" +
			"entry in the library is processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			types, err := ctx.fileTypes()
			if err != nil {
				return err
			}
			return ctx.withWriter(func(cfg *config.Config, store *library.Store) error {
				return runLink(cmd, cfg, store, types, logger, args, opts)
			})
		},
	}
	cmd.Flags().StringArrayVar(&opts.roots, "root", nil, "Root directory to search instead of the configured ones (repeatable)")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Report links without changing the library")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Entries matched in parallel (default link.workers)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Output JSON")
	return cmd
}

func runLink(cmd *cobra.Command, cfg *config.Config, store *library.Store, types autolink.TypeResolver, logger *slog.Logger, keys []string, opts linkOptions) error {
	ctx := cmd.Context()

	dirs, err := resolveRoots(ctx, cfg, store, opts.roots)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no root directories configured (set roots.directories, run `autolink roots set`, or pass --root)")
	}

	var entries []*bib.Entry
	if len(keys) > 0 {
		entries, err = store.EntriesByKey(ctx, keys)
	} else {
		entries, err = store.ListEntries(ctx)
	}
	if err != nil {
		return err
	}

	run, err := store.BeginRun(ctx, opts.dryRun)
	if err != nil {
		return err
	}
	ctx = logging.WithRunID(ctx, run.ID)
	runLogger := logging.WithContext(ctx, logger)

	var sink autolink.Sink = store.Sink(run.ID)
	if opts.dryRun {
		sink = autolink.DryRun{}
	}

	workers := opts.workers
	if workers <= 0 {
		workers = cfg.Link.Workers
	}
	recorder := metrics.New()
	filesystem := fsys.OS()
	scanner := scan.New(filesystem, scan.WithLogger(runLogger), scan.WithConcurrency(cfg.Scan.Concurrency))
	matcher := autolink.NewMatcher(filesystem, dirs, types, autolink.WithMatcherLogger(runLogger))
	linker := autolink.NewLinker(scanner, matcher,
		autolink.WithLinkerLogger(runLogger),
		autolink.WithWorkers(workers),
		autolink.WithObserver(recorder),
	)

	runLogger.Info("link run started",
		logging.Int("entries", len(entries)),
		logging.Int("roots", len(dirs)),
		logging.Bool("dry_run", opts.dryRun),
	)
	result, linkErr := linker.LinkAssociatedFiles(ctx, entries, sink)

	summary := library.Summary{EntriesProcessed: len(entries)}
	if result != nil {
		summary.LinksAdded = len(result.Added)
		summary.ErrorCount = len(result.Errors)
	}
	if err := store.FinishRun(context.WithoutCancel(ctx), run.ID, summary); err != nil {
		logging.WarnWithContext(runLogger, "failed to record run summary", "run_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run `autolink runs list` to inspect the journal"),
			logging.String(logging.FieldImpact, "run is listed as unfinished"),
		)
	}
	if opts.metricsFile != "" {
		if err := recorder.WriteTextfile(opts.metricsFile); err != nil {
			logging.WarnWithContext(runLogger, "failed to write metrics textfile", "metrics_write_failed",
				logging.Error(err),
				logging.String(logging.FieldPath, opts.metricsFile),
				logging.String(logging.FieldImpact, "metrics for this run are not exported"),
			)
		}
	}
	if linkErr != nil {
		logging.ErrorWithContext(runLogger, "link run interrupted", "link_run_interrupted",
			logging.Error(linkErr),
			logging.Int("links_added", summary.LinksAdded),
			logging.String(logging.FieldErrorHint, "rerun the link command; already linked files are skipped"),
		)
		return linkErr
	}
	runLogger.Info("link run finished",
		logging.Int("links_added", summary.LinksAdded),
		logging.Int("entries_changed", len(result.ChangedEntries)),
		logging.Int("errors", summary.ErrorCount),
	)

	view := linkOutput{
		RunID:          run.ID,
		DryRun:         opts.dryRun,
		Roots:          dirs,
		FilesScanned:   result.FilesScanned,
		EntriesChanged: len(result.ChangedEntries),
		Added:          make([]addedLinkView, 0, len(result.Added)),
		Errors:         pathErrorViews(result.Errors),
	}
	for _, added := range result.Added {
		view.Added = append(view.Added, addedLinkView{Key: added.Entry.Key, Link: added.Link})
	}
	if opts.asJSON {
		return writeJSON(cmd, view)
	}
	printLinkOutput(cmd, view, result.Errors)
	return nil
}

func printLinkOutput(cmd *cobra.Command, view linkOutput, errs []scan.PathError) {
	out := cmd.OutOrStdout()
	if len(view.Added) > 0 {
		rows := make([][]string, 0, len(view.Added))
		for _, added := range view.Added {
			rows = append(rows, []string{added.Key, added.Link.Path, added.Link.FileType})
		}
		fmt.Fprintln(out, renderTable([]string{"Entry", "Path", "Type"}, rows, nil))
	}
	printPathErrors(out, errs)

	verb := "Added"
	if view.DryRun {
		verb = "Would add"
	}
	fmt.Fprintf(out, "%s %d links to %d entries (%d files scanned, %d errors)\n",
		verb, len(view.Added), view.EntriesChanged, view.FilesScanned, len(view.Errors))
	fmt.Fprintf(out, "Run %s\n", view.RunID)
}
