package sink

import (
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/render"
)

// PDFOption configures the PDF sink.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
}

// WithPDFSVGOptions forwards SVG options to the underlying renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = append(r.svgOpts, opts...) }
}

// RenderPDF renders the plot to PDF by converting the SVG output.
func RenderPDF(spec *forest.Spec, opts ...PDFOption) ([]byte, error) {
	r := &pdfRenderer{}
	for _, opt := range opts {
		opt(r)
	}
	svg, err := RenderSVG(spec, r.svgOpts...)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}
