package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"autolink/internal/bib"
	"autolink/internal/config"
	"autolink/internal/library"
)

const shortRunIDLength = 8

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and revert link runs",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsRevertCommand(ctx))
	return runsCmd
}

func shortRunID(id string) string {
	if len(id) > shortRunIDLength {
		return id[:shortRunIDLength]
	}
	return id
}

func formatTimestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func runStatus(run *library.Run) string {
	switch {
	case run.Reverted():
		return "reverted"
	case run.DryRun:
		return "dry run"
	case run.Finished():
		return "applied"
	default:
		return "incomplete"
	}
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List link runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				runs, err := store.ListRuns(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					if runs == nil {
						runs = []*library.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					started := run.StartedAt
					rows = append(rows, []string{
						shortRunID(run.ID),
						formatTimestamp(&started),
						strconv.Itoa(run.EntriesProcessed),
						strconv.Itoa(run.LinksAdded),
						strconv.Itoa(run.ErrorCount),
						runStatus(run),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Entries", "Links", "Errors", "Status"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show RUN",
		Short: "Show a run and the entries it changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				changes, err := store.Changes(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if asJSON {
					if changes == nil {
						changes = []library.Change{}
					}
					return writeJSON(cmd, map[string]any{"run": run, "changes": changes})
				}

				keys, err := entryKeysByID(cmd, store)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Status:   %s\n", runStatus(run))
				fmt.Fprintf(out, "Started:  %s\n", formatTimestamp(&run.StartedAt))
				fmt.Fprintf(out, "Finished: %s\n", formatTimestamp(run.FinishedAt))
				if run.Reverted() {
					fmt.Fprintf(out, "Reverted: %s\n", formatTimestamp(run.RevertedAt))
				}
				fmt.Fprintf(out, "Entries: %d  Links: %d  Errors: %d\n", run.EntriesProcessed, run.LinksAdded, run.ErrorCount)
				if len(changes) == 0 {
					fmt.Fprintln(out, "No changes recorded")
					return nil
				}
				rows := make([][]string, 0, len(changes))
				for _, change := range changes {
					key, ok := keys[change.EntryID]
					if !ok {
						key = "(deleted) " + change.EntryID
					}
					rows = append(rows, []string{key, strconv.Itoa(addedCount(change)), change.NewValue})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Entry", "Added", "File field"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func addedCount(change library.Change) int {
	return len(bib.ParseFileField(change.NewValue)) - len(bib.ParseFileField(change.OldValue))
}

func entryKeysByID(cmd *cobra.Command, store *library.Store) (map[string]string, error) {
	entries, err := store.ListEntries(cmd.Context())
	if err != nil {
		return nil, err
	}
	keys := make(map[string]string, len(entries))
	for _, entry := range entries {
		keys[entry.ID] = entry.Key
	}
	return keys, nil
}

func newRunsRevertCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "revert RUN",
		Short: "Undo the links a run added",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWriter(func(_ *config.Config, store *library.Store) error {
				result, err := store.RevertRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reverted run %s (%d entries restored)\n", shortRunID(result.RunID), result.Entries)
				return nil
			})
		},
	}
}
