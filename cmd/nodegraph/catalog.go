package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	categoryStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	subCategoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
)

func newCatalogCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the component catalog",
	}
	cmd.AddCommand(newCatalogListCommand(g))
	return cmd
}

func newCatalogListCommand(g *globals) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List components grouped by category and subcategory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.setup(); err != nil {
				return err
			}
			cat, err := g.loadCatalog()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range cat.Categories() {
				if category != "" && c != category {
					continue
				}
				fmt.Fprintln(out, categoryStyle.Render(c))
				for _, sub := range cat.SubCategories(c) {
					fmt.Fprintln(out, "  "+subCategoryStyle.Render(sub))
					defs := cat.InCategory(c, sub)
					sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
					for _, d := range defs {
						fmt.Fprintf(out, "    %-10s %-24s %s\n", d.GlobalAddress, d.Name, d.NickName)
					}
				}
			}
			fmt.Fprintf(out, "\n%d components\n", cat.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list one category")
	return cmd
}
