package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTypesCommand(ctx *commandContext) *cobra.Command {
	typesCmd := &cobra.Command{
		Use:   "types",
		Short: "Inspect the file type registry",
	}
	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List known file types",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.fileTypes()
			if err != nil {
				return err
			}
			types := registry.List()
			if asJSON {
				return writeJSON(cmd, types)
			}
			rows := make([][]string, 0, len(types))
			for _, t := range types {
				rows = append(rows, []string{t.Name, t.Extension, t.MimeType})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Extension", "MIME type"}, rows, nil))
			return nil
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	typesCmd.AddCommand(listCmd)
	return typesCmd
}
