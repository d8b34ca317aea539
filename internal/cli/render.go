package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forestplot/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path (or base path for multiple formats)
	formats    []string // output formats: "svg", "png", "pdf", "json"
	width      float64  // document width in pixels
	height     float64  // document height in pixels (0 keeps natural height)
	theme      string   // preset theme name
	themeFile  string   // TOML theme overlay path
	background string   // background color override
	scale      float64  // raster scale factor for PNG
	noCache    bool     // disable the artifact cache
}

// renderCommand creates the render command for generating plot images.
//
// Default settings:
//   - format: svg
//   - width: 800px, height: natural (follows row count)
//   - theme: package default (overridable with --theme / --theme-file)
//   - caching: on (content-addressed artifact cache)
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		width: pipeline.DefaultWidth,
		scale: pipeline.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "render [spec.json]",
		Short: "Render a plot spec to SVG, PNG, PDF, or layout JSON",
		Long: `Render a plot spec to one or more output formats.

The render command parses and validates the spec, composes the layout, and
writes the requested artifacts next to the input file (or to --output).
The "json" format emits the versioned layout record instead of an image,
for consumers that draw the plot themselves.

Rendered artifacts are cached by spec content and render options, so
re-rendering an unchanged spec is a cache lookup. Use --no-cache to force
recomputation.

PNG and PDF output require librsvg (rsvg-convert) on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "document width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "document height in pixels (0 = natural)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "preset theme: default, journal, dark")
	cmd.Flags().StringVar(&opts.themeFile, "theme-file", "", "TOML theme overlay file")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color override")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale factor (png)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender executes the pipeline and writes the requested artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	runner := c.newRunner(opts.noCache)
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering plot...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		SpecPath:   input,
		Formats:    opts.formats,
		Width:      opts.width,
		Height:     opts.height,
		Theme:      opts.theme,
		ThemeFile:  opts.themeFile,
		Background: opts.background,
		Scale:      opts.scale,
		NoCache:    opts.noCache,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if opts.output == "-" {
		return writeStdout(result.Artifacts, opts.formats)
	}

	paths, err := writeArtifacts(result.Artifacts, opts.formats, opts.output, input)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", filepath.Base(input))
	for _, path := range paths {
		printFile(path)
	}
	printStats(result.Stats.RowCount, len(result.Spec.Data.Groups), result.CacheInfo.Hit())
	printNewline()
	printNextStep("View interactively", fmt.Sprintf("%s view %s", appName, input))

	return nil
}

// writeStdout streams a single artifact to standard output. Multiple
// formats on one stream would be unparseable, so that is rejected.
func writeStdout(artifacts map[string][]byte, formats []string) error {
	if len(formats) != 1 {
		return fmt.Errorf("writing to stdout requires exactly one format, got %d", len(formats))
	}
	_, err := os.Stdout.Write(artifacts[formats[0]])
	return err
}

// writeArtifacts writes each rendered format to its own file and returns
// the written paths in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := artifactPath(output, input, format, len(formats) > 1)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactPath derives the output path for one format.
//
// Single format: the explicit output wins as-is; otherwise the input name
// with its extension swapped (trial.json → trial.svg).
// Multiple formats: the output (or input) acts as a base path and each
// format appends its own extension (trial.svg + trial.png).
func artifactPath(output, input, format string, multi bool) string {
	if !multi && output != "" {
		return output
	}
	path := basePath(output, input) + "." + format
	if path == input {
		// spec.json rendered as json must not overwrite the spec itself
		path = basePath(output, input) + ".layout." + format
	}
	return path
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. If output carries
// a known format extension, that extension is stripped so the per-format
// extension does not stack on top of it.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
