package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"autolink/internal/config"
	"autolink/internal/library"
	"autolink/internal/preflight"
)

func newRootsCommand(ctx *commandContext) *cobra.Command {
	rootsCmd := &cobra.Command{
		Use:   "roots",
		Short: "Inspect and configure the directories searched for files",
	}
	rootsCmd.AddCommand(newRootsListCommand(ctx))
	rootsCmd.AddCommand(newRootsSetCommand(ctx))
	rootsCmd.AddCommand(newRootsCheckCommand(ctx))
	return rootsCmd
}

func newRootsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List root directories in search order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				dirs, err := resolveRoots(cmd.Context(), cfg, store, nil)
				if err != nil {
					return err
				}
				if asJSON {
					if dirs == nil {
						dirs = []string{}
					}
					return writeJSON(cmd, dirs)
				}
				out := cmd.OutOrStdout()
				if len(dirs) == 0 {
					fmt.Fprintln(out, "No root directories configured")
					return nil
				}
				rows := make([][]string, 0, len(dirs))
				for i, dir := range dirs {
					rows = append(rows, []string{strconv.Itoa(i + 1), dir})
				}
				fmt.Fprintln(out, renderTable([]string{"#", "Directory"}, rows, []columnAlignment{alignRight, alignLeft}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newRootsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set [DIR...]",
		Short: "Replace the library's own file directories (no arguments clears them)",
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := make([]string, 0, len(args))
			for _, arg := range args {
				if arg = strings.TrimSpace(arg); arg != "" {
					dirs = append(dirs, arg)
				}
			}
			return ctx.withWriter(func(_ *config.Config, store *library.Store) error {
				if err := store.SetFileDirectories(cmd.Context(), dirs); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(dirs) == 0 {
					fmt.Fprintln(out, "Cleared library file directories")
					return nil
				}
				fmt.Fprintf(out, "Library file directories set to %s\n", strings.Join(dirs, ", "))
				return nil
			})
		},
	}
}

func newRootsCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the library directory and every root are accessible",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				dirs, err := resolveRoots(cmd.Context(), cfg, store, nil)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				results := preflight.RunAll(cfg, dirs)
				for _, result := range results {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
				if len(dirs) == 0 {
					fmt.Fprintln(out, renderStatusLine("Root directory", statusWarn, "none configured", colorize))
				}
				if failed := preflight.Failed(results); len(failed) > 0 {
					return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
				}
				return nil
			})
		},
	}
}
