package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/plot/format"
	"github.com/matzehuels/forestplot/pkg/plot/layout"
	"github.com/matzehuels/forestplot/pkg/plot/styles"
)

const (
	tickLength = 5

	// Weight scaling bounds. Marker area tracks the row weight, so the
	// factor applies to the square root of the relative weight.
	weightScaleMin = 0.6
	weightScaleMax = 1.6
)

// plotBackdrop draws everything that sits under the row content:
// gridlines at the ticks, the null reference line, and annotations.
func (d *drawing) plotBackdrop(buf *bytes.Buffer) {
	l, th := d.l, d.th
	top, bottom := l.Body.Y, l.Body.Bottom()
	if d.gridlinesOn() {
		for _, t := range l.Axis.Ticks {
			x := d.px.ToPixel(t)
			fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
				x, top, x, bottom, th.Colors.Gridline)
		}
	}
	if null := d.spec.Data.Null(); d.inRegion(null) {
		x := d.px.ToPixel(null)
		fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`+"\n",
			x, top, x, bottom, th.Colors.NullLine, th.Shapes.LineWidth)
	}
	for i := range d.spec.Annotations {
		d.annotation(buf, &d.spec.Annotations[i], top, bottom)
	}
}

func (d *drawing) gridlinesOn() bool {
	if g := d.spec.Axis.Gridlines; g != nil {
		return *g
	}
	return d.th.Axis.ShowGridlines()
}

func (d *drawing) annotation(buf *bytes.Buffer, a *forest.Annotation, top, bottom float64) {
	if !d.inRegion(a.Value) {
		return
	}
	x := d.px.ToPixel(a.Value)
	stroke := a.Color
	if stroke == "" {
		stroke = d.th.Colors.NullLine
	}
	dash := ""
	if p := styles.Dash(a.Style); p != "" {
		dash = fmt.Sprintf(` stroke-dasharray="%s"`, p)
	}
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"%s/>`+"\n",
		x, top, x, bottom, stroke, d.th.Shapes.LineWidth, dash)
	if a.Label != "" {
		size := d.th.Typography.BaseSize * 0.85
		d.text(buf, x, top-4, a.Label, textStyle{size: size, fill: stroke, anchor: "middle"})
	}
}

// plotRow draws one row's estimates: a whisker and marker per effect,
// or a diamond for summary rows with an interval.
func (d *drawing) plotRow(buf *bytes.Buffer, s layout.Slot) {
	r := s.Entry.Row
	for i := range d.effects {
		eff := &d.effects[i]
		est := r.Estimate(eff)
		cy := s.CenterY() + d.offsets[i]
		if r.IsSummary() && est.HasInterval() {
			d.summary(buf, r, s, est, eff, cy)
			continue
		}
		d.whisker(buf, est, eff, cy)
		d.marker(buf, r, est, eff, i, cy)
	}
}

func (d *drawing) whisker(buf *bytes.Buffer, est forest.Estimate, eff *forest.Effect, cy float64) {
	if !est.HasInterval() {
		return
	}
	x1, lowCut := d.boundX(est.Lower)
	x2, highCut := d.boundX(est.Upper)
	stroke := d.th.Colors.CI
	if eff.Color != "" {
		stroke = eff.Color
	}
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`+"\n",
		x1, cy, x2, cy, stroke, d.th.Shapes.LineWidth)
	if lowCut {
		fmt.Fprintf(buf, `  <path d="%s" fill="%s"/>`+"\n",
			styles.ArrowPath(x1, cy, d.th.Shapes.ArrowSize, false), stroke)
	}
	if highCut {
		fmt.Fprintf(buf, `  <path d="%s" fill="%s"/>`+"\n",
			styles.ArrowPath(x2, cy, d.th.Shapes.ArrowSize, true), stroke)
	}
}

func (d *drawing) marker(buf *bytes.Buffer, r *forest.Row, est forest.Estimate, eff *forest.Effect, index int, cy float64) {
	if !est.HasPoint() || !d.inRegion(est.Point) {
		return
	}
	mk := styles.ResolveMarker(r, eff, index, d.th)
	attrs := ""
	if mk.Opacity < 1 {
		attrs = fmt.Sprintf(` fill-opacity="%.2f"`, mk.Opacity)
	}
	fmt.Fprintf(buf, `  <path d="%s" fill="%s"%s/>`+"\n",
		styles.ShapePath(mk.Shape, d.px.ToPixel(est.Point), cy, mk.Size*d.weightScale(r)), mk.Color, attrs)
}

// summary draws the pooled-estimate diamond. Bounds beyond the limits
// clamp silently; a diamond never grows truncation arrows.
func (d *drawing) summary(buf *bytes.Buffer, r *forest.Row, s layout.Slot, est forest.Estimate, eff *forest.Effect, cy float64) {
	x1, _ := d.boundX(est.Lower)
	x2, _ := d.boundX(est.Upper)
	cx, _ := d.boundX(est.Point)
	if !est.HasPoint() {
		cx = (x1 + x2) / 2
	}
	h := s.Height * d.th.Shapes.DiamondHeight
	fmt.Fprintf(buf, `  <path d="%s" fill="%s"/>`+"\n",
		styles.SummaryPath(x1, x2, cx, cy, h), d.summaryFill(r, eff))
}

func (d *drawing) summaryFill(r *forest.Row, eff *forest.Effect) string {
	if eff.Color != "" {
		return eff.Color
	}
	if r.Marker != nil && r.Marker.Color != "" {
		return r.Marker.Color
	}
	return d.th.Colors.SummaryFill
}

// boundX clamps a confidence bound to the axis limits and maps it to
// pixels, reporting whether the bound was truncated.
func (d *drawing) boundX(v float64) (x float64, truncated bool) {
	a := d.l.Axis
	if a.Truncated(v) {
		if v < a.Min {
			return d.px.ToPixel(a.Min), true
		}
		return d.px.ToPixel(a.Max), true
	}
	return d.px.ToPixel(v), false
}

// inRegion reports whether a value falls inside the padded plot
// region, which extends a half marker width past the limits.
func (d *drawing) inRegion(v float64) bool {
	a := d.l.Axis
	return isFinite(v) && v >= a.RegionMin && v <= a.RegionMax
}

// weightScale sizes a marker by the square root of its relative
// weight, so marker area tracks the weight field.
func (d *drawing) weightScale(r *forest.Row) float64 {
	if d.maxWeight <= 0 {
		return 1
	}
	w := forest.MetaFloat(r.Meta, d.spec.Data.WeightField)
	if !isFinite(w) || w <= 0 {
		return 1
	}
	k := math.Sqrt(w/d.maxWeight) * weightScaleMax
	return math.Min(math.Max(k, weightScaleMin), weightScaleMax)
}

// axis draws the baseline, tick marks, tick labels, and axis label.
func (d *drawing) axis(buf *bytes.Buffer) {
	l, th := d.l, d.th
	y0 := l.AxisBand.Y
	stroke := th.Colors.CI
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
		l.Plot.X, y0, l.Plot.Right(), y0, stroke)
	size := th.Typography.BaseSize
	for _, t := range l.Axis.Ticks {
		x := d.px.ToPixel(t)
		fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
			x, y0, x, y0+tickLength, stroke)
		d.text(buf, x, y0+tickLength+size, format.Tick(t), textStyle{
			size: size, fill: th.Colors.Text, anchor: "middle",
		})
	}
	if lbl := d.spec.Axis.Label; lbl != "" {
		cy := l.AxisBand.Bottom() - size*lineHeight/2
		d.text(buf, (l.Plot.X+l.Plot.Right())/2, baseline(cy, size), lbl, textStyle{
			size: size, fill: th.Colors.Text, anchor: "middle", bold: true,
		})
	}
}
