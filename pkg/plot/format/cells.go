package format

import (
	"github.com/matzehuels/forestplot/pkg/forest"
)

// Cell returns the display string of one row under one column. Both the
// column width engine and the renderers resolve cell text through here,
// which is what keeps measured and drawn widths identical. Purely
// graphical cell types (sparkline, img, forest, viz_*) carry no text
// and return "".
func Cell(r *forest.Row, c *forest.Column) string {
	switch opts := c.EffectiveOptions().(type) {
	case forest.TextOptions:
		return Truncate(fieldText(r, c.Field), opts.MaxChars)
	case forest.NumericOptions:
		return Number(forest.MetaFloat(r.Meta, c.Field), opts.Decimals)
	case forest.IntervalOptions:
		e := r.Estimate(intervalEffect(c.Field, opts.PointField, opts.LowerField, opts.UpperField))
		return Interval(e.Point, e.Lower, e.Upper, opts.Decimals)
	case forest.RangeOptions:
		lower, upper := rangeBounds(r, opts)
		return Range(lower, upper, opts.Decimals)
	case forest.PValueOptions:
		return PValue(forest.MetaFloat(r.Meta, c.Field), PValueOptions{
			Decimals:   opts.Decimals,
			Threshold:  opts.Threshold,
			Scientific: opts.Scientific,
		})
	case forest.StarsOptions:
		n, ok := forest.MetaInt(r.Meta, c.Field)
		if !ok {
			return ""
		}
		return Stars(n, opts.Max)
	case forest.IconOptions:
		v := fieldText(r, c.Field)
		if glyph, ok := opts.Map[v]; ok {
			return glyph
		}
		return v
	case forest.BadgeOptions:
		return fieldText(r, c.Field)
	case forest.ReferenceOptions:
		if opts.Text != "" {
			return opts.Text
		}
		return fieldText(r, c.Field)
	case forest.BarOptions:
		// Bars are drawn, not printed; the optional value annotation is
		// the only text they contribute to width measurement.
		if opts.ShowValue {
			return Number(forest.MetaFloat(r.Meta, c.Field), 1)
		}
		return ""
	default:
		return ""
	}
}

// Header returns the display header of a column: the explicit header
// when set, otherwise the data section's label for its field.
func Header(c *forest.Column, d *forest.Data) string {
	if c.Header != "" {
		return c.Header
	}
	if c.Field == "" {
		return ""
	}
	return d.HeaderLabel(c.Field)
}

// Truncate shortens s to max runes, replacing the tail with an
// ellipsis. Non-positive max leaves s untouched.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// fieldText resolves a text value: the row label for the reserved
// label field, otherwise row metadata.
func fieldText(r *forest.Row, field string) string {
	if field == forest.FieldLabel || field == "" {
		return r.Label
	}
	return forest.MetaString(r.Meta, field)
}

// intervalEffect maps interval column options onto an effect selector.
// Without a point field the row's primary estimate applies.
func intervalEffect(field, pointField, lowerField, upperField string) *forest.Effect {
	point := pointField
	if point == "" && field != forest.FieldLabel {
		point = field
	}
	if point == "" {
		return nil
	}
	return &forest.Effect{Field: point, Lower: lowerField, Upper: upperField}
}

// rangeBounds picks range column bounds from option fields, falling
// back to the row's primary interval.
func rangeBounds(r *forest.Row, opts forest.RangeOptions) (float64, float64) {
	if opts.LowerField != "" || opts.UpperField != "" {
		return forest.MetaFloat(r.Meta, opts.LowerField), forest.MetaFloat(r.Meta, opts.UpperField)
	}
	e := r.Estimate(nil)
	return e.Lower, e.Upper
}
