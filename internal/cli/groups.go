package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/render/grouptree"
)

// groupsOpts holds the command-line flags for the groups command.
type groupsOpts struct {
	output string
	format string
	scale  float64
}

// groupsCommand creates the groups debug command, which draws the spec's
// group hierarchy as a Graphviz diagram instead of rendering the plot.
func (c *CLI) groupsCommand() *cobra.Command {
	opts := groupsOpts{scale: 2.0}

	cmd := &cobra.Command{
		Use:   "groups [spec.json]",
		Short: "Render the group hierarchy as a Graphviz diagram",
		Long: `Render the spec's group hierarchy as a node-link diagram, one box per
group with its subtree row count, parents connected to children.

This is a debugging aid for nested specs: when a header count or a
collapse looks wrong, the diagram shows the hierarchy the resolver
actually built. Use --format dot to get the raw Graphviz source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGroups(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.groups.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "svg", "output format: svg, png, pdf, dot")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale factor (png)")

	return cmd
}

// runGroups parses the spec, builds the DOT source, and renders it.
func (c *CLI) runGroups(ctx context.Context, input string, opts *groupsOpts) error {
	spec, err := forest.ReadFile(input)
	if err != nil {
		return err
	}
	if len(spec.Data.Groups) == 0 {
		printInfo("Spec has no groups")
		return nil
	}

	dot, err := grouptree.ToDOT(spec)
	if err != nil {
		return err
	}

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg", "png", "pdf":
		spinner := newSpinnerWithContext(ctx, "Rendering hierarchy...")
		spinner.Start()
		switch opts.format {
		case "svg":
			data, err = grouptree.RenderSVG(dot)
		case "png":
			data, err = grouptree.RenderPNG(dot, opts.scale)
		case "pdf":
			data, err = grouptree.RenderPDF(dot)
		}
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		spinner.Stop()
	default:
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, dot)", opts.format)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	path := opts.output
	if path == "" {
		path = basePath("", input) + ".groups." + opts.format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Rendered group hierarchy (%d groups)", len(spec.Data.Groups))
	printFile(path)
	return nil
}
