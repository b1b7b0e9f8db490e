package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/network"
	"github.com/matzehuels/goalnet/pkg/pipeline"
)

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      layoutFlags
		formats    string
		output     string
		fromLayout bool
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a goal network as JSON, DOT or SVG",
		Long: `Render a goal network as JSON, DOT or SVG.

By default the input is a network file: it is laid out first (nothing is
saved) and then rendered. With --layout the input is a layout file written
by 'goalnet layout' and is rendered as is.

Each format is written to <output>.<format>. SVG rendering pins every goal
at its computed position and only routes the edges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmts := parseFormats(formats)
			if err := pipeline.ValidateFormats(fmts); err != nil {
				return err
			}
			base := output
			if base == "" {
				base = trimExt(args[0])
			}

			if fromLayout {
				return c.renderLayoutFile(cmd.Context(), args[0], base, fmts, detailed)
			}

			opts := c.layoutDefaults()
			flags.apply(cmd, &opts)
			opts.Formats = fmts
			opts.Detailed = detailed
			opts.SkipSave = true
			opts.Logger = c.Logger
			return c.renderNetworkFile(cmd.Context(), args[0], base, opts, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formats, "format", "f", "svg", "output formats (comma-separated): json, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().BoolVar(&fromLayout, "layout", false, "input is a layout file")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include role and importance in labels")

	return cmd
}

func (c *CLI) renderNetworkFile(ctx context.Context, input, base string, opts pipeline.Options, noCache bool) error {
	g, err := network.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load network %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := c.runWithSpinner(ctx, "Rendering...", func() (*pipeline.Result, error) {
		return runner.Run(ctx, g, opts)
	})
	if err != nil {
		return err
	}
	if err := writeArtifacts(res.Artifacts, opts.Formats, base); err != nil {
		return err
	}
	printStats(len(res.Layout.Nodes), len(res.Layout.Edges), res.CacheInfo.RenderHit)
	return nil
}

func (c *CLI) renderLayoutFile(ctx context.Context, input, base string, formats []string, detailed bool) error {
	res, err := layout.ReadResultFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	prog := newProgress(c.Logger)
	artifacts, err := pipeline.Render(ctx, res, formats, detailed)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	prog.done(fmt.Sprintf("Rendered %d formats", len(formats)))

	return writeArtifacts(artifacts, formats, base)
}

func writeArtifacts(artifacts map[string][]byte, formats []string, base string) error {
	printSuccess("Render complete")
	for _, format := range formats {
		path := base + "." + format
		if format == pipeline.FormatJSON {
			path = base + ".layout.json"
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
