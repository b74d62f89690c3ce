package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/pdftools/backend/internal/models"
	"github.com/pdftools/backend/internal/registry"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	var (
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := registry.Default()

			tools := reg.Tools()
			if category != "" {
				if _, ok := reg.Category(category); !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				tools = reg.ToolsByCategory(category)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tools)
			}
			return printTools(cmd, tools)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list tools of this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

func printTools(cmd *cobra.Command, tools []models.Tool) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tACCEPTS")
	for _, t := range tools {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Category, t.AcceptedFiles)
	}
	return tw.Flush()
}
