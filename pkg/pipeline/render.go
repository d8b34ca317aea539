package pipeline

import (
	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
	"github.com/matzehuels/forestplot/pkg/plot/layout"
	"github.com/matzehuels/forestplot/pkg/plot/measure"
	"github.com/matzehuels/forestplot/pkg/render"
	"github.com/matzehuels/forestplot/pkg/render/sink"
)

// =============================================================================
// Artifact Rendering
// =============================================================================

// RenderFromLayout renders the requested formats from a composed layout.
// SVG is drawn once and shared by the PNG and PDF conversions; JSON emits
// the layout record directly. The theme and measurer must be the ones the
// layout was composed with, so drawn text lands where it was measured.
func RenderFromLayout(l *layout.Layout, spec *forest.Spec, th *theme.Theme, m measure.Measurer, opts Options, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)

	var svg []byte
	svgBytes := func() []byte {
		if svg == nil {
			svg = sink.RenderLayout(l, spec, th, svgOptions(m, opts)...)
		}
		return svg
	}

	for _, format := range formats {
		switch format {
		case FormatSVG:
			artifacts[FormatSVG] = svgBytes()
		case FormatPNG:
			data, err := render.ToPNG(svgBytes(), opts.Scale)
			if err != nil {
				return nil, err
			}
			artifacts[FormatPNG] = data
		case FormatPDF:
			data, err := render.ToPDF(svgBytes())
			if err != nil {
				return nil, err
			}
			artifacts[FormatPDF] = data
		case FormatJSON:
			data, err := sink.LayoutJSON(l, spec)
			if err != nil {
				return nil, err
			}
			artifacts[FormatJSON] = data
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
		}
	}

	return artifacts, nil
}

// svgOptions builds the draw-stage options. Size and measurer mirror the
// compose stage; background only affects drawing.
func svgOptions(m measure.Measurer, opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{
		sink.WithSize(opts.Width, opts.Height),
		sink.WithMeasurer(m),
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}
	return svgOpts
}
