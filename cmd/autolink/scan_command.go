package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"autolink/internal/config"
	"autolink/internal/fsys"
	"autolink/internal/library"
	"autolink/internal/logging"
	"autolink/internal/scan"
)

type scanOutput struct {
	Roots  []string              `json:"roots"`
	Files  []scan.DiscoveredFile `json:"files"`
	Errors []pathErrorView       `json:"errors"`
}

type pathErrorView struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func pathErrorViews(errs []scan.PathError) []pathErrorView {
	views := make([]pathErrorView, 0, len(errs))
	for _, e := range errs {
		msg := ""
		if e.Err != nil {
			msg = e.Err.Error()
		}
		views = append(views, pathErrorView{Path: e.Path, Error: msg})
	}
	return views
}

func printPathErrors(out io.Writer, errs []scan.PathError) {
	for _, e := range errs {
		fmt.Fprintf(out, "error: %s\n", e.Error())
	}
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var rootFlags []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the files found beneath the root directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				dirs, err := resolveRoots(cmd.Context(), cfg, store, rootFlags)
				if err != nil {
					return err
				}
				scanner := scan.New(fsys.OS(),
					scan.WithLogger(logger),
					scan.WithConcurrency(cfg.Scan.Concurrency),
				)
				result, err := scanner.Scan(cmd.Context(), dirs)
				if err != nil {
					return err
				}
				logger.Debug("scan finished",
					logging.Int("roots", len(dirs)),
					logging.Int("files", len(result.Files)),
					logging.Duration("duration", result.Duration),
				)

				if asJSON {
					files := result.Files
					if files == nil {
						files = []scan.DiscoveredFile{}
					}
					if dirs == nil {
						dirs = []string{}
					}
					return writeJSON(cmd, scanOutput{Roots: dirs, Files: files, Errors: pathErrorViews(result.Errors)})
				}

				out := cmd.OutOrStdout()
				if len(result.Files) > 0 {
					rows := make([][]string, 0, len(result.Files))
					for _, file := range result.Files {
						rows = append(rows, []string{file.Name, file.AbsolutePath})
					}
					fmt.Fprintln(out, renderTable([]string{"Name", "Path"}, rows, nil))
				}
				printPathErrors(out, result.Errors)
				fmt.Fprintf(out, "%d files in %d roots (%s)\n", len(result.Files), len(dirs), result.Duration.Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&rootFlags, "root", nil, "Root directory to scan instead of the configured ones (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
