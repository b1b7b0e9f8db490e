package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/goalnet/pkg/layout"
)

// placeCommand creates the place command for positioning one new goal.
func (c *CLI) placeCommand() *cobra.Command {
	var (
		count   int
		spacing float64
	)

	cmd := &cobra.Command{
		Use:   "place [layout.json]",
		Short: "Suggest a position for one new goal",
		Long: `Suggest a position for one new goal.

The position is the next free slot of a golden-ratio spiral around the
origin. It depends only on how many goals are already placed: pass a layout
file and its node count is used, or give the count directly with --count.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("base-spacing") {
				spacing = c.Config.Layout.WithDefaults().BaseSpacing
			}

			var p layout.Point
			switch {
			case len(args) == 1:
				res, err := layout.ReadResultFile(args[0])
				if err != nil {
					return fmt.Errorf("load layout %s: %w", args[0], err)
				}
				placed := make([]layout.Point, len(res.Nodes))
				for i, n := range res.Nodes {
					placed[i] = n.Position()
				}
				p = layout.NewNodePosition(placed, spacing)
			case cmd.Flags().Changed("count"):
				if count < 0 {
					return fmt.Errorf("--count must not be negative")
				}
				p = layout.SpiralPosition(count, spacing)
			default:
				return fmt.Errorf("either a layout file or --count is required")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%.2f %.2f\n", p.X, p.Y)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of goals already placed")
	cmd.Flags().Float64Var(&spacing, "base-spacing", 0, fmt.Sprintf("distance between related goals (default %g)", layout.DefaultBaseSpacing))

	return cmd
}
