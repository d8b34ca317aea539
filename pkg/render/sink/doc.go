// Package sink renders forest plot specifications into their final
// output formats.
//
// Every sink runs the same composition pipeline: validate the spec,
// resolve the theme, expand the display sequence, and compose the
// layout. The SVG sink then draws that layout; PNG and PDF rasterize
// the SVG via librsvg; JSON emits the layout record itself so clients
// can hit-test and restyle without reimplementing any layout rule.
//
// # Formats
//
//   - [RenderSVG]: vector output, the native format
//   - [RenderPNG]: raster export, requires rsvg-convert
//   - [RenderPDF]: print export, requires rsvg-convert
//   - [RenderJSON]: the versioned layout record
//
// [RenderLayout] draws a layout composed elsewhere, for callers that
// already hold one (interactive sessions re-rendering after a view
// change); its bytes match [RenderSVG] on the same inputs.
//
// # Fonts
//
// Text placement uses a font measurer. When the theme names a font
// file, glyph advances come from the parsed face; otherwise a
// character class estimator approximates proportional text.
// Measurement gaps degrade to the estimator, never to an error.
package sink
