package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/recipe"
)

func newRecipeCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Validate and format graph recipes",
	}
	cmd.AddCommand(newRecipeValidateCommand(g))
	cmd.AddCommand(newRecipeFmtCommand(g))
	cmd.AddCommand(newRecipeSchemaCommand())
	return cmd
}

func newRecipeValidateCommand(g *globals) *cobra.Command {
	var strict bool
	var noCatalog bool

	cmd := &cobra.Command{
		Use:   "validate <recipe.json>...",
		Short: "Check recipes against the catalog",
		Long: `Parses each recipe and builds it against the component catalog, reporting
unknown components, dangling connections and incompatible anchors. With
--no-catalog only the document structure is checked.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.setup(); err != nil {
				return err
			}
			var failed int
			for _, path := range args {
				warnings, err := validateRecipe(g, path, noCatalog)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed++
					continue
				}
				for _, w := range warnings {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, w)
				}
				if strict && len(warnings) > 0 {
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d warnings)\n", path, len(warnings))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d recipes failed validation", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	cmd.Flags().BoolVar(&noCatalog, "no-catalog", false, "Only check document structure")
	return cmd
}

func validateRecipe(g *globals, path string, noCatalog bool) ([]recipe.Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if noCatalog {
		_, warnings, err := recipe.Parse(data)
		return warnings, err
	}

	cat, err := g.loadCatalog()
	if err != nil {
		return nil, err
	}
	res, err := recipe.Decode(data, graph.New(cat, append(g.graphOptions(), graph.WithLogger(g.log))...), recipe.WithLogger(g.log))
	if err != nil {
		return nil, err
	}
	return res.Warnings, nil
}

func newRecipeFmtCommand(g *globals) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt <recipe.json>...",
		Short: "Rewrite recipes in canonical form",
		Long: `Normalizes recipes: two-space indentation, "id_in_recipe" instead of the
"id" alias, and malformed entries dropped. Without -w the result is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.setup(); err != nil {
				return err
			}
			for _, path := range args {
				if err := formatRecipe(cmd.OutOrStdout(), cmd.ErrOrStderr(), path, write); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	return cmd
}

func formatRecipe(stdout, stderr io.Writer, path string, write bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, warnings, err := recipe.Format(data)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(stderr, "%s: %s\n", path, w)
	}
	if !write {
		_, err := stdout.Write(append(out, '\n'))
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0644)
}

func newRecipeSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the expected recipe format",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), recipe.Schema)
		},
	}
}
