// Package plot provides the forest plot layout engine.
//
// # Overview
//
// A forest plot pairs a table of labeled data rows with a shared numeric
// effect axis on which each row draws a point estimate and confidence
// interval. This package implements the multi-stage pipeline that turns a
// parsed specification into exact geometry:
//
//  1. Scale ([scale]): Nice numeric domains, linear/log value-to-pixel scales, tick values.
//  2. Axis ([axis]): Effect axis limits with CI clipping, plot region margins, tick selection.
//  3. Sequence ([sequence]): Group hierarchy resolution into the ordered display sequence.
//  4. Measure ([measure]): Text width measurement and automatic column sizing.
//  5. Layout ([layout]): Final row/column/axis geometry shared by every renderer.
//  6. Format ([format]): Display-string formatting for numbers, intervals, and p-values.
//  7. Styles ([styles]): Marker style resolution and SVG drawing primitives.
//
// # Layout Pipeline
//
// The computation typically follows these steps:
//
//	spec, _ := forest.ReadFile("plot.json")
//	th := theme.Resolve(spec.Theme)
//
//	// 1. Resolve the display sequence
//	seq, _ := sequence.Resolve(spec.Data.Rows, spec.Data.Groups, nil)
//
//	// 2. Compute the effect axis
//	ax := axis.Compute(axis.Input{Rows: spec.Data.Rows, ...})
//
//	// 3. Measure columns and compose geometry
//	widths := measure.ResolveWidths(spec.Columns, ...)
//	l := layout.Compose(seq, widths, ax, th, layout.Hints{Width: 800})
//
// Every consumer (the static SVG renderer, the interactive plot handle,
// the terminal viewer) derives its drawing from the same Layout value, so
// geometry never diverges between outputs.
//
// # Subpackages
//
//   - [scale]: Domain rounding, scales, and tick generation.
//   - [axis]: The effect axis computation engine.
//   - [sequence]: Group arena and display sequence resolution.
//   - [measure]: Text measurement strategies and the column width engine.
//   - [layout]: The geometry composer.
//   - [format]: Number and interval formatting.
//   - [styles]: Marker resolution and shape path emitters.
//
// [scale]: github.com/matzehuels/forestplot/pkg/plot/scale
// [axis]: github.com/matzehuels/forestplot/pkg/plot/axis
// [sequence]: github.com/matzehuels/forestplot/pkg/plot/sequence
// [measure]: github.com/matzehuels/forestplot/pkg/plot/measure
// [layout]: github.com/matzehuels/forestplot/pkg/plot/layout
// [format]: github.com/matzehuels/forestplot/pkg/plot/format
// [styles]: github.com/matzehuels/forestplot/pkg/plot/styles
package plot
