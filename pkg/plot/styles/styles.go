// Package styles resolves marker visuals and row banding, and emits the
// SVG path primitives shared by the interactive and static renderers.
// Keeping resolution in one place is what makes the two outputs agree
// glyph for glyph.
package styles

import (
	"fmt"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
)

// Marker is one fully resolved marker style.
type Marker struct {
	Shape   string
	Color   string
	Opacity float64
	Size    float64
}

// ResolveMarker resolves the marker drawn for one effect of one row.
//
// Precedence, lowest to highest: the built-in shape cycle and theme
// marker palette, the theme marker style at the effect index, the
// effect's own explicit style, and the row marker override. The row
// override applies to the primary effect only; secondary effects on
// the same row keep their effect- or theme-derived style.
func ResolveMarker(row *forest.Row, effect *forest.Effect, index int, th *theme.Theme) Marker {
	m := Marker{
		Shape:   theme.DefaultShapeCycle[index%len(theme.DefaultShapeCycle)],
		Color:   paletteColor(th, index),
		Opacity: 1,
		Size:    th.Shapes.PointSize,
	}

	if index < len(th.Shapes.MarkerStyles) {
		s := th.Shapes.MarkerStyles[index]
		m.apply(s.Shape, s.Color, s.Opacity)
	}
	if effect != nil {
		m.apply(effect.Shape, effect.Color, effect.Opacity)
	}
	if index == 0 && row != nil && row.Marker != nil {
		o := row.Marker
		m.apply(o.Shape, o.Color, 0)
		if o.Opacity != nil {
			m.Opacity = *o.Opacity
		}
		if o.Size != nil && *o.Size > 0 {
			m.Size = *o.Size
		}
	}
	return m
}

// apply overlays one style layer; empty and zero fields keep the
// current value.
func (m *Marker) apply(shape, color string, opacity float64) {
	if shape != "" {
		m.Shape = shape
	}
	if color != "" {
		m.Color = color
	}
	if opacity > 0 {
		m.Opacity = opacity
	}
}

func paletteColor(th *theme.Theme, index int) string {
	if p := th.Colors.MarkerPalette; len(p) > 0 {
		return p[index%len(p)]
	}
	return th.Colors.CI
}

// Mode returns the effective banding mode. Auto resolves to depth tints
// when the spec defines any group and to alternating parity bands
// otherwise; the two modes never combine.
func Mode(mode string, hasGroups bool) string {
	switch mode {
	case theme.BandingParity, theme.BandingDepth, theme.BandingNone:
		return mode
	}
	if hasGroups {
		return theme.BandingDepth
	}
	return theme.BandingParity
}

// RowBand returns the background fill of a data row, or "" for none.
// Parity banding fills every second data row counting visible data rows
// only; depth banding tints rows by their hierarchy depth.
func RowBand(mode string, dataIndex, depth int, th *theme.Theme) string {
	switch mode {
	case theme.BandingParity:
		if dataIndex%2 == 1 {
			return th.Colors.Band
		}
	case theme.BandingDepth:
		if depth > 0 {
			return groupTint(th, depth-1)
		}
	}
	return ""
}

// Bold reports whether a row's text renders bold. Summary and header
// rows are always bold; data rows opt in per row. The width engine
// measures with the same rule, so bold text never overflows its cell.
func Bold(r *forest.Row) bool {
	return r.Bold || r.IsSummary() || r.IsHeader()
}

// HeaderTint returns the background tint of a group header row at the
// given nesting depth.
func HeaderTint(depth int, th *theme.Theme) string {
	return groupTint(th, depth)
}

func groupTint(th *theme.Theme, i int) string {
	if tints := th.Colors.GroupTints; len(tints) > 0 {
		return tints[i%len(tints)]
	}
	return ""
}

// ShapePath returns the SVG path of a marker centered at (cx, cy) with
// the given bounding box edge. Unknown shape names draw as squares.
func ShapePath(shape string, cx, cy, size float64) string {
	h := size / 2
	switch shape {
	case theme.ShapeCircle:
		return fmt.Sprintf("M%.1f %.1fA%.1f %.1f 0 1 0 %.1f %.1fA%.1f %.1f 0 1 0 %.1f %.1fZ",
			cx-h, cy, h, h, cx+h, cy, h, h, cx-h, cy)
	case theme.ShapeDiamond:
		return fmt.Sprintf("M%.1f %.1fL%.1f %.1fL%.1f %.1fL%.1f %.1fZ",
			cx, cy-h, cx+h, cy, cx, cy+h, cx-h, cy)
	case theme.ShapeTriangle:
		return fmt.Sprintf("M%.1f %.1fL%.1f %.1fL%.1f %.1fZ",
			cx, cy-h, cx+h, cy+h, cx-h, cy+h)
	default:
		return fmt.Sprintf("M%.1f %.1fH%.1fV%.1fH%.1fZ",
			cx-h, cy-h, cx+h, cy+h, cx-h)
	}
}

// SummaryPath returns the pooled-estimate diamond: tips at the interval
// bounds, waist at the point estimate.
func SummaryPath(x1, x2, cx, cy, height float64) string {
	h := height / 2
	return fmt.Sprintf("M%.1f %.1fL%.1f %.1fL%.1f %.1fL%.1f %.1fZ",
		x1, cy, cx, cy-h, x2, cy, cx, cy+h)
}

// ArrowPath returns a truncation arrow head with its tip at (x, y),
// pointing right when right is true.
func ArrowPath(x, y, size float64, right bool) string {
	d := -size
	if right {
		d = size
	}
	return fmt.Sprintf("M%.1f %.1fL%.1f %.1fL%.1f %.1fZ",
		x, y, x-d, y-size/2, x-d, y+size/2)
}
