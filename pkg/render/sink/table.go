package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/plot/format"
	"github.com/matzehuels/forestplot/pkg/plot/layout"
	"github.com/matzehuels/forestplot/pkg/plot/sequence"
	"github.com/matzehuels/forestplot/pkg/plot/styles"
)

// Label column decoration metrics, in pixels. The width engine measures
// with the same values, so drawn content never overflows its column.
const (
	badgePadding = 4 // inside the badge pill, per side
	badgeGap     = 6 // between label text and badge
	headerGap    = 6 // around the chevron and before the count
)

// bands paints row backgrounds: explicit row colors, group header
// tints, and the banding mode resolved at layout time.
func (d *drawing) bands(buf *bytes.Buffer) {
	for _, s := range d.l.Rows {
		fill := d.slotFill(s)
		if fill == "" {
			continue
		}
		fmt.Fprintf(buf, `  <rect x="0" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			s.Y, d.l.Width, s.Height, fill)
	}
}

func (d *drawing) slotFill(s layout.Slot) string {
	if s.Entry.Kind == sequence.EntryHeader {
		return styles.HeaderTint(s.Entry.Depth, d.th)
	}
	r := s.Entry.Row
	if r.Background != "" {
		return r.Background
	}
	if r.IsSpacer() {
		return ""
	}
	return styles.RowBand(d.l.Banding, s.DataIndex, s.Entry.Depth, d.th)
}

// headers draws the column header band: group spans centered over
// their leaves on the upper tier, leaf headers on the lower.
func (d *drawing) headers(buf *bytes.Buffer) {
	l, th := d.l, d.th
	tier := l.Header.Height
	if l.TwoTier {
		tier /= 2
		cy := l.Header.Y + tier/2
		for _, s := range l.Spans {
			d.text(buf, s.CenterX(), baseline(cy, th.Typography.HeaderSize),
				format.Header(s.Column, &d.spec.Data), textStyle{
					size: th.Typography.HeaderSize, fill: th.Colors.HeaderText,
					anchor: "middle", bold: true,
				})
		}
	}
	cy := l.Header.Bottom() - tier/2
	pad := th.Spacing.CellPadding
	for i := range l.Columns {
		c := &l.Columns[i]
		d.text(buf, c.TextX(pad), baseline(cy, th.Typography.HeaderSize),
			format.Header(c.Column, &d.spec.Data), textStyle{
				size: th.Typography.HeaderSize, fill: th.Colors.HeaderText,
				anchor: styles.TextAnchor(c.Column.EffectiveAlign()), bold: true,
			})
	}
}

func (d *drawing) rows(buf *bytes.Buffer) {
	for _, s := range d.l.Rows {
		if s.Entry.Kind == sequence.EntryHeader {
			d.groupHeader(buf, s)
			continue
		}
		if s.Entry.Row.IsSpacer() {
			continue
		}
		d.tableCells(buf, s)
		d.plotRow(buf, s)
	}
}

// groupHeader draws one collapsible group line: chevron, bold label,
// and the data row count beneath the group.
func (d *drawing) groupHeader(buf *bytes.Buffer, s layout.Slot) {
	th := d.th
	e := s.Entry
	size := th.Typography.BaseSize
	cy := s.CenterY()
	x := d.labelX() + float64(e.Depth)*th.Spacing.Indent

	if ch := th.GroupHeader.ChevronSize; ch > 0 {
		fmt.Fprintf(buf, `  <path d="%s" fill="%s"/>`+"\n",
			chevronPath(x, cy, ch, e.Collapsed), th.Colors.HeaderText)
		x += ch + headerGap
	}
	label := e.Group.DisplayLabel()
	d.text(buf, x, baseline(cy, size), label, textStyle{
		size: size, fill: th.Colors.HeaderText, bold: true,
	})
	if th.GroupHeader.ShowCounts() {
		x += d.m.Width(label, size, true) + headerGap
		d.text(buf, x, baseline(cy, size), fmt.Sprintf("(%d)", e.RowCount), textStyle{
			size: size, fill: th.Colors.HeaderText,
		})
	}
}

func (d *drawing) labelX() float64 {
	if d.labelCell != nil {
		return d.labelCell.X + d.th.Spacing.CellPadding
	}
	return d.th.Spacing.Margin
}

// chevronPath draws the collapse indicator: a right-pointing triangle
// for collapsed groups, down-pointing for expanded ones.
func chevronPath(x, cy, size float64, collapsed bool) string {
	h := size / 2
	if collapsed {
		return fmt.Sprintf("M%.1f %.1fL%.1f %.1fL%.1f %.1fZ", x, cy-h, x+size, cy, x, cy+h)
	}
	return fmt.Sprintf("M%.1f %.1fL%.1f %.1fL%.1f %.1fZ", x, cy-h, x+size, cy-h, x+h, cy+h)
}

func (d *drawing) tableCells(buf *bytes.Buffer, s layout.Slot) {
	for i := range d.l.Columns {
		cell := &d.l.Columns[i]
		if isLabelColumn(cell.Column) {
			d.labelCellText(buf, cell, s)
			continue
		}
		if s.Entry.Row.IsHeader() {
			continue // header rows carry label text only
		}
		switch opts := cell.Column.EffectiveOptions().(type) {
		case forest.BadgeOptions:
			d.badgeCell(buf, cell, s, opts)
		case forest.BarOptions:
			d.barCell(buf, cell, s, opts.Max, opts.Color, opts.ShowValue)
		case forest.VizBarOptions:
			d.barCell(buf, cell, s, opts.Max, opts.Color, false)
		case forest.SparklineOptions:
			d.sparklineCell(buf, cell, s, opts)
		case forest.ImgOptions:
			d.imgCell(buf, cell, s, opts)
		case forest.ForestOptions:
			d.forestCell(buf, cell, s, opts)
		case forest.BoxplotOptions:
			d.boxplotCell(buf, cell, s, opts)
		case forest.ViolinOptions:
			d.violinCell(buf, cell, s, opts)
		default:
			d.textCell(buf, cell, s)
		}
	}
}

// labelCellText draws the row label with its hierarchy indent and
// optional trailing badge.
func (d *drawing) labelCellText(buf *bytes.Buffer, cell *layout.Cell, s layout.Slot) {
	r := s.Entry.Row
	if r.Label == "" && r.Badge == "" {
		return
	}
	th := d.th
	size := th.Typography.BaseSize
	bold := styles.Bold(r)
	x := cell.X + th.Spacing.CellPadding + float64(s.Entry.Depth+r.Indent)*th.Spacing.Indent
	d.text(buf, x, baseline(s.CenterY(), size), r.Label, textStyle{
		size: size, fill: d.textColor(r), bold: bold, italic: r.Italic,
	})
	if r.Badge != "" {
		bx := x + d.m.Width(r.Label, size, bold) + badgeGap
		d.badge(buf, bx, s.CenterY(), r.Badge, "")
	}
}

func (d *drawing) textCell(buf *bytes.Buffer, cell *layout.Cell, s layout.Slot) {
	r := s.Entry.Row
	val := format.Cell(r, cell.Column)
	if val == "" {
		return
	}
	th := d.th
	d.text(buf, cell.TextX(th.Spacing.CellPadding), baseline(s.CenterY(), th.Typography.BaseSize), val, textStyle{
		size:   th.Typography.BaseSize,
		fill:   d.textColor(r),
		anchor: styles.TextAnchor(cell.Column.EffectiveAlign()),
		bold:   styles.Bold(r),
		italic: r.Italic,
	})
}

func (d *drawing) textColor(r *forest.Row) string {
	if r.TextColor != "" {
		return r.TextColor
	}
	if r.IsHeader() {
		return d.th.Colors.HeaderText
	}
	return d.th.Colors.Text
}

func (d *drawing) badgeCell(buf *bytes.Buffer, cell *layout.Cell, s layout.Slot, opts forest.BadgeOptions) {
	val := format.Cell(s.Entry.Row, cell.Column)
	if val == "" {
		return
	}
	size := d.th.Typography.BaseSize * d.th.Typography.BadgeScale
	w := d.m.Width(val, size, false) + 2*badgePadding
	d.badge(buf, cell.CenterX()-w/2, s.CenterY(), val, opts.Colors[val])
}

// badge draws a pill with its left edge at x, vertically centered at cy.
func (d *drawing) badge(buf *bytes.Buffer, x, cy float64, text, background string) {
	th := d.th
	size := th.Typography.BaseSize * th.Typography.BadgeScale
	w := d.m.Width(text, size, false) + 2*badgePadding
	h := size + badgePadding
	fill := background
	if fill == "" {
		fill = th.Colors.BadgeBackground
	}
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s"/>`+"\n",
		x, cy-h/2, w, h, h/2, fill)
	d.text(buf, x+w/2, baseline(cy, size), text, textStyle{
		size: size, fill: th.Colors.BadgeText, anchor: "middle",
	})
}
