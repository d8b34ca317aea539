package grouptree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/plot/sequence"
	"github.com/matzehuels/forestplot/pkg/render"
)

// ToDOT converts a spec's group hierarchy to Graphviz DOT format. The
// resulting DOT string can be rendered using [RenderSVG], [RenderPDF],
// or [RenderPNG].
//
// Each group node shows its display label and the data row count of its
// subtree, the same count a collapsed header badge would show. Rows
// outside any group are summarized in one dashed node.
func ToDOT(spec *forest.Spec) (string, error) {
	tree, err := sequence.Build(&spec.Data)
	if err != nil {
		return "", err
	}

	// Resolve fully expanded so every header entry appears once; the
	// header row counts are exactly the subtree data counts.
	counts := map[string]int{}
	loose := 0
	for _, e := range tree.Resolve(sequence.Options{}) {
		switch e.Kind {
		case sequence.EntryHeader:
			counts[e.Group.ID] = e.RowCount
		case sequence.EntryRow:
			if e.Depth == 0 && e.Row != nil && e.Row.IsData() {
				loose++
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range tree.GroupIDs() {
		g, ok := tree.Group(id)
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", g.ID, strings.Join(nodeAttrs(g, counts[g.ID]), ", "))
	}
	if loose > 0 {
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n",
			"(ungrouped)", fmtLabel("ungrouped", loose))
	}

	buf.WriteString("\n")
	for _, id := range tree.GroupIDs() {
		g, ok := tree.Group(id)
		if !ok || g.Parent == "" {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", g.Parent, g.ID)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeAttrs(g *forest.Group, count int) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(g.DisplayLabel(), count))}
	if g.Collapsed {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

func fmtLabel(label string, count int) string {
	if count == 1 {
		return label + "\n1 row"
	}
	return fmt.Sprintf("%s\n%d rows", label, count)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz svg element to a zero-origin
// viewBox with explicit pixel dimensions, which embeds cleanly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
