// Package grouptree renders a spec's group hierarchy as a Graphviz
// node-link diagram.
//
// # Overview
//
// This package is a debugging aid for nested specs: it draws each group
// as a box, connects parents to children, and annotates every box with
// the number of data rows its subtree contributes to the plot. When a
// collapse or row-count question comes up, the diagram answers it
// faster than reading the resolved display sequence.
//
// # Usage
//
// Convert a spec's hierarchy to DOT format, then render to SVG:
//
//	dot, err := grouptree.ToDOT(spec)
//	svg, err := grouptree.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := grouptree.RenderPDF(dot)
//	png, err := grouptree.RenderPNG(dot, 2.0)  // 2x scale
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded
// box nodes. Rows outside any group appear as a single dashed node.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package grouptree
