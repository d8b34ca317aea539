package measure

import (
	"fmt"

	"github.com/matzehuels/forestplot/pkg/forest"
)

// =============================================================================
// Auto-Sizing
// =============================================================================

// Cell is one formatted display string to measure. The text must be the
// exact string the renderer will draw; widths computed from anything
// else drift from the output.
type Cell struct {
	Text string
	Bold bool
}

// AutoWidth sizes an auto-width column: the widest of the bold header
// and every cell, plus padding, clamped to [minW, maxW].
func AutoWidth(m Measurer, header string, cells []Cell, size, padding, minW, maxW float64) float64 {
	w := m.Width(header, size, true)
	for _, c := range cells {
		if cw := m.Width(c.Text, size, c.Bold); cw > w {
			w = cw
		}
	}
	return clamp(w+padding, minW, maxW)
}

// LabelCell is one label-column line: row label text plus the inline
// decorations that occupy horizontal space.
type LabelCell struct {
	Text   string
	Bold   bool
	Indent float64 // leading indent in pixels (group depth + explicit row indent)
	Badge  string  // inline badge text; empty for none
}

// HeaderCell is one group header line living in the label column.
type HeaderCell struct {
	Label  string
	Indent float64
	Count  int // data rows beneath; negative suppresses the suffix
}

// LabelParams collects the theme-derived metrics of label measurement.
type LabelParams struct {
	Size         float64
	BadgeScale   float64 // badge font = Size * BadgeScale
	BadgePadding float64 // horizontal padding inside the badge pill, per side
	BadgeGap     float64 // gap between label text and badge
	ChevronSize  float64
	Gap          float64 // gap around the chevron and before the count
	HeaderMargin float64 // safety margin on group header lines
	Padding      float64
	Min, Max     float64
}

// LabelWidth sizes the label column. Group headers share the column
// with row labels and are often its widest content once the chevron
// and count suffix are included.
func LabelWidth(m Measurer, rows []LabelCell, headers []HeaderCell, p LabelParams) float64 {
	w := 0.0
	for _, c := range rows {
		lw := c.Indent + m.Width(c.Text, p.Size, c.Bold)
		if c.Badge != "" {
			lw += p.BadgeGap + m.Width(c.Badge, p.Size*p.BadgeScale, false) + 2*p.BadgePadding
		}
		if lw > w {
			w = lw
		}
	}
	for _, h := range headers {
		hw := h.Indent + p.ChevronSize + p.Gap + m.Width(h.Label, p.Size, true)
		if h.Count >= 0 {
			hw += p.Gap + m.Width(fmt.Sprintf("(%d)", h.Count), p.Size, false)
		}
		hw += p.HeaderMargin
		if hw > w {
			w = hw
		}
	}
	return clamp(w+p.Padding, p.Min, p.Max)
}

func clamp(v, lo, hi float64) float64 {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// =============================================================================
// Group Width Propagation
// =============================================================================

// Node mirrors one spec column with its resolved pixel width. Group
// nodes report the span of their leaves including the gaps between
// them.
type Node struct {
	Column   *forest.Column
	Width    float64
	Children []Node
}

// IsGroup reports whether the node mirrors a column group.
func (n *Node) IsGroup() bool { return len(n.Children) > 0 }

// Leaves appends pointers to all leaf nodes beneath n (or n itself).
func (n *Node) Leaves(dst []*Node) []*Node {
	if !n.IsGroup() {
		return append(dst, n)
	}
	for i := range n.Children {
		dst = n.Children[i].Leaves(dst)
	}
	return dst
}

// ResolveWidths assigns final widths to a column list, bottom-up.
// Every leaf width comes from leafWidth, which arbitrates between
// fixed widths, interactive overrides, and content measurement. A
// group whose header (via headerWidth) is wider than its leaf span
// gets the shortfall distributed evenly across all leaves beneath it,
// fixed widths included; the header must fit.
func ResolveWidths(cols []forest.Column, gap float64, leafWidth func(*forest.Column) float64, headerWidth func(string) float64) []Node {
	nodes := make([]Node, len(cols))
	for i := range cols {
		nodes[i] = resolveNode(&cols[i], gap, leafWidth, headerWidth)
	}
	return nodes
}

func resolveNode(c *forest.Column, gap float64, leafWidth func(*forest.Column) float64, headerWidth func(string) float64) Node {
	if !c.IsGroup() {
		return Node{Column: c, Width: leafWidth(c)}
	}

	n := Node{Column: c, Children: make([]Node, len(c.Columns))}
	for i := range c.Columns {
		n.Children[i] = resolveNode(&c.Columns[i], gap, leafWidth, headerWidth)
	}

	span := n.recompute(gap)
	if hw := headerWidth(c.Header); hw > span {
		leaves := n.Leaves(nil)
		extra := (hw - span) / float64(len(leaves))
		for _, leaf := range leaves {
			leaf.Width += extra
		}
		span = n.recompute(gap)
	}
	n.Width = span
	return n
}

// recompute re-sums group widths from the leaves up and returns the
// node's width.
func (n *Node) recompute(gap float64) float64 {
	if !n.IsGroup() {
		return n.Width
	}
	sum := 0.0
	for i := range n.Children {
		sum += n.Children[i].recompute(gap)
	}
	sum += gap * float64(len(n.Children)-1)
	n.Width = sum
	return sum
}
