package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"autolink/internal/config"
	"autolink/internal/library"
	"autolink/internal/logging"
	"autolink/internal/logs"
)

const logFollowWait = 2 * time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		runRef string
		lines  int
		follow bool
		level  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log records, optionally for one run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter, err := buildLogFilter(level)
			if err != nil {
				return err
			}
			if strings.TrimSpace(runRef) != "" {
				err := ctx.withStore(func(_ *config.Config, store *library.Store) error {
					run, err := store.GetRun(cmd.Context(), runRef)
					if err != nil {
						return err
					}
					filter.RunID = run.ID
					return nil
				})
				if err != nil {
					return err
				}
			}

			path := filepath.Join(cfg.Paths.LogDir, logging.FileName)
			out := cmd.OutOrStdout()
			opts := logs.TailOptions{Offset: -1, Limit: lines, Filter: filter}
			for {
				result, err := logs.Tail(cmd.Context(), path, opts)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				for _, rec := range result.Records {
					if err := printLogRecord(cmd, out, rec, asJSON); err != nil {
						return err
					}
				}
				if !follow {
					return nil
				}
				opts = logs.TailOptions{Offset: result.Offset, Follow: true, Wait: logFollowWait, Filter: filter}
			}
		},
	}
	cmd.Flags().StringVarP(&runRef, "run", "r", "", "Only records of this run (ID or unique prefix)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of records to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new records until interrupted")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON records")
	return cmd
}

func buildLogFilter(level string) (logs.Filter, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return logs.Filter{}, nil
	}
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return logs.Filter{}, fmt.Errorf("invalid --level %q", level)
	}
	return logs.Filter{MinLevel: parsed, HasMinLevel: true}, nil
}

func printLogRecord(cmd *cobra.Command, out io.Writer, rec logs.Record, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, rec)
	}
	var b strings.Builder
	if !rec.Time.IsZero() {
		b.WriteString(rec.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(rec.Level))
	if rec.Component != "" {
		fmt.Fprintf(&b, "[%s] ", rec.Component)
	}
	b.WriteString(rec.Message)
	for _, key := range rec.AttrKeys() {
		fmt.Fprintf(&b, " %s=%v", key, rec.Attrs[key])
	}
	fmt.Fprintln(out, b.String())
	return nil
}
