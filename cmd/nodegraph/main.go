package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:   "nodegraph",
		Short: "nodegraph - visual node-graph editor",
		Long: `nodegraph serves an interactive node-graph editor over WebSocket and
provides command line tools to validate, format, lay out, render and inspect
graph recipes.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file (defaults to nodegraph.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&g.dev, "dev", false, "Human-readable development logging")
	rootCmd.PersistentFlags().StringVar(&g.catalogPath, "catalog", "", "Component catalog JSON file")

	rootCmd.AddCommand(newServeCommand(g))
	rootCmd.AddCommand(newRecipeCommand(g))
	rootCmd.AddCommand(newLayoutCommand(g))
	rootCmd.AddCommand(newRenderCommand(g))
	rootCmd.AddCommand(newInspectCommand(g))
	rootCmd.AddCommand(newCatalogCommand(g))

	return rootCmd
}
