package sink

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
	"github.com/matzehuels/forestplot/pkg/plot/axis"
	"github.com/matzehuels/forestplot/pkg/plot/format"
	"github.com/matzehuels/forestplot/pkg/plot/layout"
	"github.com/matzehuels/forestplot/pkg/plot/styles"
)

// barCell draws a horizontal data bar. Bar and viz_bar columns share
// it; viz_bar never prints the value.
func (d *drawing) barCell(buf *bytes.Buffer, cell *layout.Cell, s layout.Slot, max float64, color string, showValue bool) {
	v := forest.MetaFloat(s.Entry.Row.Meta, cell.Column.Field)
	if !isFinite(v) {
		return
	}
	if max <= 0 {
		_, max = d.columnRange(cell)
	}
	if max <= 0 {
		return
	}
	th := d.th
	pad := th.Spacing.CellPadding
	x := cell.X + pad
	w := cell.Width - 2*pad
	h := th.Typography.BaseSize
	cy := s.CenterY()
	frac := math.Min(math.Max(v/max, 0), 1)
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="2" fill="%s"/>`+"\n",
		x, cy-h/2, w*frac, h, d.accent(color))
	if !showValue {
		return
	}
	txt := format.Tick(v)
	size := th.Typography.BaseSize * 0.85
	vx := x + w*frac + 4
	st := textStyle{size: size, fill: th.Colors.Text}
	if vx+d.m.Width(txt, size, false) > cell.Right()-pad {
		// No room past the bar end; print inside it instead.
		vx = x + w*frac - 4
		st.anchor = "end"
		st.fill = th.Colors.Background
	}
	d.text(buf, vx, baseline(cy, size), txt, st)
}

func (d *drawing) sparklineCell(buf *bytes.Buffer, cell *layout.Cell, s layout.Slot, opts forest.SparklineOptions) {
	vals := forest.MetaFloats(s.Entry.Row.Meta, cell.Column.Field)
	if len(vals) < 2 {
		return
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if !isFinite(v) {
			return
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if opts.Min != nil {
		lo = *opts.Min
	}
	if opts.Max != nil {
		hi = *opts.Max
	}
	th := d.th
	pad := th.Spacing.CellPadding
	x0 := cell.X + pad
	w := cell.Width - 2*pad
	h := th.Typography.BaseSize
	cy := s.CenterY()
	step := w / float64(len(vals)-1)
	var pts bytes.Buffer
	for i, v := range vals {
		f := 0.5
		if hi > lo {
			f = math.Min(math.Max((v-lo)/(hi-lo), 0), 1)
		}
		if i > 0 {
			pts.WriteByte(' ')
		}
		fmt.Fprintf(&pts, "%.1f,%.1f", x0+float64(i)*step, cy+h/2-f*h)
	}
	fmt.Fprintf(buf, `  <polyline points="%s" fill="none" stroke="%s" stroke-width="%.1f"/>`+"\n",
		pts.String(), d.accent(opts.Color), th.Shapes.LineWidth)
}

// imgCell draws an embedded image. Only data: URIs render; anything
// else would make the document fetch remote content.
func (d *drawing) imgCell(buf *bytes.Buffer, cell *layout.Cell, s layout.Slot, opts forest.ImgOptions) {
	uri := forest.MetaString(s.Entry.Row.Meta, cell.Column.Field)
	if !strings.HasPrefix(uri, "data:") {
		return
	}
	th := d.th
	h := opts.Height
	if h <= 0 {
		h = s.Height - 8
	}
	h = math.Min(h, s.Height)
	pad := th.Spacing.CellPadding
	fmt.Fprintf(buf, `  <image x="%.1f" y="%.1f" width="%.1f" height="%.1f" href="%s" preserveAspectRatio="xMidYMid meet"/>`+"\n",
		cell.X+pad, s.CenterY()-h/2, cell.Width-2*pad, h, styles.EscapeXML(uri))
}

// forestCell draws a miniature estimate on the shared axis domain,
// rescaled to the cell's width. Bounds clamp to the limits silently.
func (d *drawing) forestCell(buf *bytes.Buffer, cell *layout.Cell, s layout.Slot, opts forest.ForestOptions) {
	est := s.Entry.Row.Estimate(&forest.Effect{
		Field: opts.PointField,
		Lower: opts.LowerField,
		Upper: opts.UpperField,
	})
	if !est.HasPoint() && !est.HasInterval() {
		return
	}
	th := d.th
	a := d.l.Axis
	pad := th.Spacing.CellPadding
	px := a.Scale(cell.X+pad, cell.Right()-pad)
	cy := s.CenterY()
	color := d.accent("")
	if null := d.spec.Data.Null(); d.inRegion(null) {
		fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
			px.ToPixel(null), s.Y+2, px.ToPixel(null), s.Y+s.Height-2, th.Colors.Gridline)
	}
	if est.HasInterval() {
		fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
			px.ToPixel(clampLimits(a, est.Lower)), cy, px.ToPixel(clampLimits(a, est.Upper)), cy, color)
	}
	if est.HasPoint() && d.inRegion(est.Point) {
		fmt.Fprintf(buf, `  <path d="%s" fill="%s"/>`+"\n",
			styles.ShapePath(theme.ShapeCircle, px.ToPixel(est.Point), cy, th.Shapes.PointSize*0.7), color)
	}
}

func (d *drawing) boxplotCell(buf *bytes.Buffer, cell *layout.Cell, s layout.Slot, opts forest.BoxplotOptions) {
	v, ok := boxStats(s.Entry.Row, opts, cell.Column.Field)
	if !ok {
		return
	}
	lo, hi := d.columnRange(cell)
	if hi <= lo {
		return
	}
	th := d.th
	pad := th.Spacing.CellPadding
	x0 := cell.X + pad
	w := cell.Width - 2*pad
	xAt := func(x float64) float64 { return x0 + (x-lo)/(hi-lo)*w }
	cy := s.CenterY()
	h := th.Typography.BaseSize
	color := d.accent(opts.Color)
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
		xAt(v[0]), cy, xAt(v[4]), cy, color)
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.35" stroke="%s"/>`+"\n",
		xAt(v[1]), cy-h/2, xAt(v[3])-xAt(v[1]), h, color, color)
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`+"\n",
		xAt(v[2]), cy-h/2, xAt(v[2]), cy+h/2, color, th.Shapes.LineWidth)
}

// violinCell draws a symmetric density ribbon. The field holds
// precomputed density values over a uniform support; the profile is
// normalized per cell, so only its shape carries meaning.
func (d *drawing) violinCell(buf *bytes.Buffer, cell *layout.Cell, s layout.Slot, opts forest.ViolinOptions) {
	field := opts.Field
	if field == "" {
		field = cell.Column.Field
	}
	dens := forest.MetaFloats(s.Entry.Row.Meta, field)
	if len(dens) < 3 {
		return
	}
	peak := 0.0
	for _, v := range dens {
		if !isFinite(v) || v < 0 {
			return
		}
		peak = math.Max(peak, v)
	}
	if peak <= 0 {
		return
	}
	th := d.th
	pad := th.Spacing.CellPadding
	x0 := cell.X + pad
	w := cell.Width - 2*pad
	half := th.Typography.BaseSize * 0.6
	cy := s.CenterY()
	step := w / float64(len(dens)-1)
	var p bytes.Buffer
	for i, v := range dens {
		cmd := byte('L')
		if i == 0 {
			cmd = 'M'
		}
		fmt.Fprintf(&p, "%c%.1f %.1f", cmd, x0+float64(i)*step, cy-v/peak*half)
	}
	for i := len(dens) - 1; i >= 0; i-- {
		fmt.Fprintf(&p, "L%.1f %.1f", x0+float64(i)*step, cy+dens[i]/peak*half)
	}
	p.WriteByte('Z')
	fmt.Fprintf(buf, `  <path d="%s" fill="%s" fill-opacity="0.55"/>`+"\n", p.String(), d.accent(opts.Color))
}

// boxStats reads the five boxplot statistics: five scalar fields, or
// one array field holding min, q1, median, q3, max in order.
func boxStats(r *forest.Row, opts forest.BoxplotOptions, field string) ([5]float64, bool) {
	var v [5]float64
	if len(opts.Fields) == 5 {
		for i, f := range opts.Fields {
			v[i] = forest.MetaFloat(r.Meta, f)
		}
	} else {
		if len(opts.Fields) == 1 {
			field = opts.Fields[0]
		}
		vals := forest.MetaFloats(r.Meta, field)
		if len(vals) != 5 {
			return v, false
		}
		copy(v[:], vals)
	}
	for _, x := range v {
		if !isFinite(x) {
			return v, false
		}
	}
	return v, true
}

// columnRange returns the cached value range of a numeric cell column
// across all data rows. Bars scale against the high end; boxplots use
// the full span so rows stay comparable.
func (d *drawing) columnRange(cell *layout.Cell) (lo, hi float64) {
	c := cell.Column
	if v, ok := d.colLo[c]; ok {
		return v, d.colHi[c]
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	add := func(v float64) {
		if isFinite(v) {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	boxOpts, isBox := c.EffectiveOptions().(forest.BoxplotOptions)
	for i := range d.spec.Data.Rows {
		r := &d.spec.Data.Rows[i]
		if !r.IsData() {
			continue
		}
		if isBox {
			if v, ok := boxStats(r, boxOpts, c.Field); ok {
				for _, x := range v {
					add(x)
				}
			}
			continue
		}
		add(forest.MetaFloat(r.Meta, c.Field))
	}
	if lo > hi {
		lo, hi = 0, 0
	}
	d.colLo[c], d.colHi[c] = lo, hi
	return lo, hi
}

// accent is the default color for cell visualizations.
func (d *drawing) accent(c string) string {
	if c != "" {
		return c
	}
	if p := d.th.Colors.MarkerPalette; len(p) > 0 {
		return p[0]
	}
	return d.th.Colors.CI
}

func clampLimits(a axis.Axis, v float64) float64 {
	return math.Min(math.Max(v, a.Min), a.Max)
}
