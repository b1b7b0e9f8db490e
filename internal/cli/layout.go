package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/network"
	"github.com/matzehuels/goalnet/pkg/pipeline"
)

// layoutFlags are the layout options shared by layout and render.
type layoutFlags struct {
	spacing    float64
	algorithm  string
	iterations int
	damping    float64
	noCache    bool
	refresh    bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.spacing, "base-spacing", 0, fmt.Sprintf("distance between related goals (default %g)", layout.DefaultBaseSpacing))
	cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", "", "layout algorithm: greedy (default), force")
	cmd.Flags().IntVar(&f.iterations, "iterations", 0, fmt.Sprintf("force simulation steps (default %d)", layout.DefaultIterations))
	cmd.Flags().Float64Var(&f.damping, "damping", 0, fmt.Sprintf("force simulation damping (default %g)", layout.DefaultDamping))
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if a cached layout exists")
}

// apply overrides config defaults with flags the user actually set.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("base-spacing") {
		opts.BaseSpacing = f.spacing
	}
	if cmd.Flags().Changed("algorithm") {
		opts.Algorithm = f.algorithm
	}
	if cmd.Flags().Changed("iterations") {
		opts.Iterations = f.iterations
	}
	if cmd.Flags().Changed("damping") {
		opts.Damping = f.damping
	}
	opts.Refresh = f.refresh
}

// layoutCommand creates the layout command for computing goal positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		save   bool
		userID int64
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute positions for a goal network",
		Long: `Compute positions for a goal network.

The input is a network file in the backend wire format ({"nodes": [...],
"edges": [...]}). Goals that already carry position_x/position_y keep them;
every other goal is placed by centrality around them. The result is written
to <input>.layout.json with positions and styling for every goal and edge.

With --user the network is read from the configured store instead, and the
computed positions are saved back to it. --save does the same for a file.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.layoutDefaults()
			flags.apply(cmd, &opts)
			opts.Logger = c.Logger

			switch {
			case len(args) == 1:
				opts.SkipSave = !save
				return c.runLayoutFile(cmd.Context(), args[0], output, opts, flags.noCache)
			case userID != 0:
				return c.runLayoutUser(cmd.Context(), userID, output, opts, flags.noCache)
			default:
				return fmt.Errorf("either a network file or --user is required")
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&save, "save", false, "save computed positions to the configured store")
	cmd.Flags().Int64Var(&userID, "user", 0, "lay out this user's network from the configured store")

	return cmd
}

// runLayoutFile loads the network, computes the layout, and writes output.
func (c *CLI) runLayoutFile(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	g, err := network.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load network %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache, !opts.SkipSave)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := c.runWithSpinner(ctx, fmt.Sprintf("Computing %s layout...", opts.Algorithm), func() (*pipeline.Result, error) {
		return runner.Run(ctx, g, opts)
	})
	if err != nil {
		return err
	}

	if output == "" {
		output = defaultOutput(input, "layout.json")
	}
	return c.finishLayout(res, output, opts)
}

// runLayoutUser lays out and persists a stored network.
func (c *CLI) runLayoutUser(ctx context.Context, userID int64, output string, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := c.runWithSpinner(ctx, fmt.Sprintf("Laying out network of user %d...", userID), func() (*pipeline.Result, error) {
		return runner.Execute(ctx, userID, opts)
	})
	if err != nil {
		return err
	}

	if output == "" {
		output = fmt.Sprintf("user-%d.layout.json", userID)
	}
	return c.finishLayout(res, output, opts)
}

func (c *CLI) runWithSpinner(ctx context.Context, msg string, run func() (*pipeline.Result, error)) (*pipeline.Result, error) {
	spinner := newSpinnerWithContext(ctx, msg)
	spinner.Start()

	res, err := run()
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return res, nil
}

func (c *CLI) finishLayout(res *pipeline.Result, output string, opts pipeline.Options) error {
	if err := layout.WriteResultFile(res.Layout, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(res.Layout.Nodes), len(res.Layout.Edges), res.CacheInfo.LayoutHit)
	if n := len(res.Layout.Dangling); n > 0 {
		printWarning("%d edges reference goals outside the network", n)
	}
	if !opts.SkipSave {
		printSaves(res.Layout.Saves)
	}
	printNewline()
	printNextStep("Render", appName+" render --layout "+output)

	return nil
}
