package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/nodegraph/internal/tui"
)

func newInspectCommand(g *globals) *cobra.Command {
	var engine string

	cmd := &cobra.Command{
		Use:   "inspect <recipe.json>",
		Short: "Browse a recipe's nodes, connections and warnings in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.setup(); err != nil {
				return err
			}
			sess, res, err := g.openRecipe(args[0], engine)
			if err != nil {
				return err
			}
			defer sess.Close()
			settle(sess, 0)

			warnings := make([]string, len(res.Warnings))
			for i, w := range res.Warnings {
				warnings[i] = w.String()
			}
			return tui.Run(filepath.Base(args[0]), sess.Graph(), warnings)
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "Layout engine used to place unpositioned nodes")
	return cmd
}
