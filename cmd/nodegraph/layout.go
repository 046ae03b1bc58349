package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLayoutCommand(g *globals) *cobra.Command {
	var engine string
	var ticks int
	var output string
	var reset bool

	cmd := &cobra.Command{
		Use:   "layout <recipe.json>",
		Short: "Run the layout engine over a recipe and save the positions",
		Long: `Builds the recipe, runs the layout until it settles and writes the recipe
back with every node's resolved position. Nodes with positions in the input
stay where they are unless --reset is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.setup(); err != nil {
				return err
			}
			sess, res, err := g.openRecipe(args[0], engine)
			if err != nil {
				return err
			}
			defer sess.Close()
			printWarnings(res)

			if reset {
				sess.ResetLayout()
			}
			n := settle(sess, ticks)
			g.log.Debug("layout settled", zap.Int("ticks", n))

			data, err := sess.SaveRecipe()
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "Layout engine: force or grid (defaults to config)")
	cmd.Flags().IntVar(&ticks, "ticks", maxSettleTicks, "Maximum simulation ticks")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to stdout)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Unpin every node before running the layout")
	return cmd
}
