package sink

import (
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/render"
)

// PNGOption configures the PNG sink.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions forwards SVG options to the underlying renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = append(r.svgOpts, opts...) }
}

// WithScale sets the raster scale factor (default 2.0 for sharp text).
func WithScale(scale float64) PNGOption {
	return func(r *pngRenderer) {
		if scale > 0 {
			r.scale = scale
		}
	}
}

// RenderPNG renders the plot to PNG by rasterizing the SVG output.
func RenderPNG(spec *forest.Spec, opts ...PNGOption) ([]byte, error) {
	r := &pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(r)
	}
	svg, err := RenderSVG(spec, r.svgOpts...)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, r.scale)
}
