// Package render converts finished SVG documents into raster and print
// formats.
//
// # Overview
//
// The [sink] subpackage produces the SVG itself; this package holds the
// generic format conversion shared by every export path (CLI, server,
// interactive export):
//
//	svg, err := sink.RenderSVG(spec)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0) // 2x scale
//
// [ToPDF] and [ToPNG] shell out to the external rsvg-convert tool from
// librsvg. When the tool is not installed they fail with a typed
// UNSUPPORTED error carrying install instructions; nothing in this
// package links against librsvg directly.
//
// [sink]: github.com/matzehuels/forestplot/pkg/render/sink
package render
