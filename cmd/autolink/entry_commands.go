package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"autolink/internal/autolink"
	"autolink/internal/bib"
	"autolink/internal/config"
	"autolink/internal/library"
)

func newEntryCommand(ctx *commandContext) *cobra.Command {
	entryCmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage bibliography entries",
	}
	entryCmd.AddCommand(newEntryAddCommand(ctx))
	entryCmd.AddCommand(newEntryListCommand(ctx))
	entryCmd.AddCommand(newEntryShowCommand(ctx))
	entryCmd.AddCommand(newEntryRemoveCommand(ctx))
	return entryCmd
}

func newEntryAddCommand(ctx *commandContext) *cobra.Command {
	var entryType string
	var fields []string
	var files []string

	cmd := &cobra.Command{
		Use:   "add KEY",
		Short: "Add an entry to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseFieldFlags(fields)
			if err != nil {
				return err
			}
			types, err := ctx.fileTypes()
			if err != nil {
				return err
			}
			entry := &bib.Entry{Key: args[0], Type: strings.TrimSpace(entryType), Fields: parsed}
			for _, file := range files {
				file = strings.TrimSpace(file)
				if file == "" {
					continue
				}
				link := bib.FileLink{Path: file}
				if ext, ok := autolink.FileExtension(bib.BaseName(file)); ok {
					link.FileType, _ = types.ResolveExtension(ext)
				}
				entry.AddFile(link)
			}
			return ctx.withWriter(func(_ *config.Config, store *library.Store) error {
				if err := store.AddEntry(cmd.Context(), entry); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s (%d files)\n", entry.Key, len(entry.Files))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&entryType, "type", "t", "", "Entry type (default misc)")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Field as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "Linked file path (repeatable)")
	return cmd
}

func parseFieldFlags(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	fields := make(map[string]string, len(values))
	for _, value := range values {
		name, v, ok := strings.Cut(value, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field %q (expected name=value)", value)
		}
		fields[name] = strings.TrimSpace(v)
	}
	return fields, nil
}

func newEntryListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				entries, err := store.ListEntries(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					if entries == nil {
						entries = []*bib.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Library is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					title, _ := entry.Field("title")
					rows = append(rows, []string{
						entry.Key,
						entry.Type,
						strconv.Itoa(len(entry.Files)),
						title,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Key", "Type", "Files", "Title"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newEntryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show KEY",
		Short: "Show an entry and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				entry, err := store.GetEntry(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, entry)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Key:  %s\n", entry.Key)
				fmt.Fprintf(out, "Type: %s\n", entry.Type)
				names := make([]string, 0, len(entry.Fields))
				for name := range entry.Fields {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  %s = %s\n", name, entry.Fields[name])
				}
				if len(entry.Files) == 0 {
					fmt.Fprintln(out, "No linked files")
					return nil
				}
				rows := make([][]string, 0, len(entry.Files))
				for _, file := range entry.Files {
					rows = append(rows, []string{file.Path, file.FileType, file.Description})
				}
				fmt.Fprintln(out, renderTable([]string{"Path", "Type", "Description"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newEntryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove KEY",
		Short: "Remove an entry from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWriter(func(_ *config.Config, store *library.Store) error {
				if err := store.DeleteEntry(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %s\n", args[0])
				return nil
			})
		},
	}
}
