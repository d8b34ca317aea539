package layout

import (
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/plot/format"
	"github.com/matzehuels/forestplot/pkg/plot/measure"
	"github.com/matzehuels/forestplot/pkg/plot/sequence"
	"github.com/matzehuels/forestplot/pkg/plot/styles"
)

// Label column decoration metrics, in pixels.
const (
	badgePadding = 4 // inside the badge pill, per side
	badgeGap     = 6 // between label text and badge
	headerGap    = 6 // around the chevron and before the count
	headerMargin = 4 // slack on group header lines
)

// typeMinWidths floors drawn (rather than printed) columns that would
// otherwise collapse to the global minimum.
var typeMinWidths = map[string]float64{
	forest.ColumnBar:       60,
	forest.ColumnSparkline: 60,
	forest.ColumnVizBar:    60,
	forest.ColumnBoxplot:   70,
	forest.ColumnViolin:    70,
	forest.ColumnForest:    80,
	forest.ColumnImg:       40,
	forest.ColumnIcon:      28,
	forest.ColumnBadge:     48,
	forest.ColumnStars:     70,
}

// composeColumns resolves every column width and lays the table out
// around the plot region: margin, left columns, forest, right columns,
// margin.
func (b *builder) composeColumns(l *Layout) {
	sp := b.theme.Spacing
	gap := sp.ColumnGap

	var lefts, rights []forest.Column
	for _, c := range b.spec.EffectiveColumns() {
		if c.Position == forest.PositionRight {
			rights = append(rights, c)
		} else {
			lefts = append(lefts, c)
		}
	}

	leftNodes := measure.ResolveWidths(lefts, gap, b.leafWidth, b.headerWidth)
	rightNodes := measure.ResolveWidths(rights, gap, b.leafWidth, b.headerWidth)
	l.TwoTier = hasGroupNode(leftNodes) || hasGroupNode(rightNodes)

	leftW := sideWidth(leftNodes, gap)
	rightW := sideWidth(rightNodes, gap)

	x := sp.Margin
	x = b.placeSide(l, leftNodes, x)
	if leftW > 0 {
		x += gap
	}
	l.Plot = Region{X: x, Width: b.plotWidth(leftW, rightW)}
	x = l.Plot.Right()
	if rightW > 0 {
		x += gap
	}
	x = b.placeSide(l, rightNodes, x)
	l.Width = x + sp.Margin
}

// plotWidth picks the forest column width: the spec hint, stretched to
// the viewport under auto-fit, floored so markers stay legible.
func (b *builder) plotWidth(leftW, rightW float64) float64 {
	sp := b.theme.Spacing
	w := b.spec.Layout.PlotWidth
	if w <= 0 {
		w = defaultPlotWidth
	}
	if b.spec.Layout.AutoFit && b.targetWidth > 0 {
		fixed := 2*sp.Margin + leftW + rightW
		if leftW > 0 {
			fixed += sp.ColumnGap
		}
		if rightW > 0 {
			fixed += sp.ColumnGap
		}
		w = b.targetWidth - fixed
	}
	if w < minPlotWidth {
		w = minPlotWidth
	}
	return w
}

func (b *builder) placeSide(l *Layout, nodes []measure.Node, x float64) float64 {
	gap := b.theme.Spacing.ColumnGap
	for i := range nodes {
		if i > 0 {
			x += gap
		}
		n := &nodes[i]
		if n.IsGroup() {
			l.Spans = append(l.Spans, Span{Column: n.Column, X: x, Width: n.Width})
		}
		x = placeLeaves(l, n, x, gap)
	}
	return x
}

func placeLeaves(l *Layout, n *measure.Node, x, gap float64) float64 {
	if !n.IsGroup() {
		l.Columns = append(l.Columns, Cell{Column: n.Column, X: x, Width: n.Width})
		return x + n.Width
	}
	for i := range n.Children {
		if i > 0 {
			x += gap
		}
		x = placeLeaves(l, &n.Children[i], x, gap)
	}
	return x
}

func sideWidth(nodes []measure.Node, gap float64) float64 {
	w := 0.0
	for i := range nodes {
		if i > 0 {
			w += gap
		}
		w += nodes[i].Width
	}
	return w
}

func hasGroupNode(nodes []measure.Node) bool {
	for i := range nodes {
		if nodes[i].IsGroup() {
			return true
		}
	}
	return false
}

// =============================================================================
// Width Measurement Glue
// =============================================================================

// leafWidth arbitrates one leaf column's width: interactive override,
// then fixed spec width, then content measurement.
func (b *builder) leafWidth(c *forest.Column) float64 {
	if w, ok := b.widths[c.Key()]; ok && w > 0 {
		return w
	}
	if c.Width > 0 {
		return c.Width
	}

	th := b.theme
	if isLabelColumn(c) {
		rows, headers := b.labelContent()
		w := measure.LabelWidth(b.measurer, rows, headers, measure.LabelParams{
			Size:         th.Typography.BaseSize,
			BadgeScale:   th.Typography.BadgeScale,
			BadgePadding: badgePadding,
			BadgeGap:     badgeGap,
			ChevronSize:  th.GroupHeader.ChevronSize,
			Gap:          headerGap,
			HeaderMargin: headerMargin,
			Padding:      2 * th.Spacing.CellPadding,
			Min:          th.Spacing.MinColumnWidth,
			Max:          th.Spacing.MaxColumnWidth,
		})
		if hw := b.headerWidth(format.Header(c, &b.spec.Data)); hw > w {
			w = hw
		}
		if w > th.Spacing.MaxColumnWidth {
			w = th.Spacing.MaxColumnWidth
		}
		return w
	}

	minW := th.Spacing.MinColumnWidth
	if floor, ok := typeMinWidths[c.EffectiveType()]; ok && floor > minW {
		minW = floor
	}
	return measure.AutoWidth(b.measurer,
		format.Header(c, &b.spec.Data), b.columnCells(c),
		th.Typography.BaseSize, 2*th.Spacing.CellPadding, minW, th.Spacing.MaxColumnWidth)
}

// headerWidth sizes a bold header line with cell padding, used for
// group spans and the label column header.
func (b *builder) headerWidth(header string) float64 {
	return b.measurer.Width(header, b.theme.Typography.BaseSize, true) + 2*b.theme.Spacing.CellPadding
}

// labelContent converts the display sequence into measurable label
// column lines: row labels with indent and badge, group headers with
// chevron and count.
func (b *builder) labelContent() ([]measure.LabelCell, []measure.HeaderCell) {
	th := b.theme
	indent := th.Spacing.Indent

	var rows []measure.LabelCell
	var headers []measure.HeaderCell
	for _, e := range b.entries {
		switch e.Kind {
		case sequence.EntryRow:
			if e.Row.IsSpacer() {
				continue
			}
			rows = append(rows, measure.LabelCell{
				Text:   e.Row.Label,
				Bold:   styles.Bold(e.Row),
				Indent: float64(e.Depth+e.Row.Indent) * indent,
				Badge:  e.Row.Badge,
			})
		case sequence.EntryHeader:
			count := -1
			if th.GroupHeader.ShowCounts() {
				count = e.RowCount
			}
			headers = append(headers, measure.HeaderCell{
				Label:  e.Group.DisplayLabel(),
				Indent: float64(e.Depth) * indent,
				Count:  count,
			})
		}
	}
	return rows, headers
}

// columnCells formats every visible cell of one column for width
// measurement. Spacer and text-only header rows contribute nothing
// outside the label column.
func (b *builder) columnCells(c *forest.Column) []measure.Cell {
	cells := make([]measure.Cell, 0, len(b.entries))
	for _, e := range b.entries {
		if e.Kind != sequence.EntryRow || e.Row.IsSpacer() || e.Row.IsHeader() {
			continue
		}
		text := format.Cell(e.Row, c)
		if text == "" {
			continue
		}
		cells = append(cells, measure.Cell{Text: text, Bold: styles.Bold(e.Row)})
	}
	return cells
}

// isLabelColumn reports whether the column renders row labels with
// indent, chevron, and badge decorations.
func isLabelColumn(c *forest.Column) bool {
	return c.Field == forest.FieldLabel && c.EffectiveType() == forest.ColumnText
}
