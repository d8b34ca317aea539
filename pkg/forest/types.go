package forest

import (
	"encoding/json"
	"math"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Axis scale types.
const (
	ScaleLinear = "linear"
	ScaleLog    = "log"
)

// Row kinds.
const (
	RowKindData    = "data" // default when empty
	RowKindHeader  = "header"
	RowKindSummary = "summary"
	RowKindSpacer  = "spacer"
)

// Column positions relative to the plot area.
const (
	PositionLeft  = "left" // default when empty
	PositionRight = "right"
)

// Annotation line styles.
const (
	LineSolid  = "solid" // default when empty
	LineDashed = "dashed"
	LineDotted = "dotted"
)

// Null values substituted when the spec does not set one.
const (
	DefaultNullLinear = 0.0
	DefaultNullLog    = 1.0
)

// =============================================================================
// Data - Rows, Groups, and Effect Definitions
// =============================================================================

// Data is the tabular payload of a plot spec.
type Data struct {
	Rows        []Row             `json:"rows" bson:"rows"`
	Groups      []Group           `json:"groups,omitempty" bson:"groups,omitempty"`
	Overall     *Row              `json:"overall,omitempty" bson:"overall,omitempty"`
	Labels      map[string]string `json:"labels,omitempty" bson:"labels,omitempty"`
	Scale       string            `json:"scale,omitempty" bson:"scale,omitempty"`
	NullValue   *float64          `json:"null_value,omitempty" bson:"null_value,omitempty"`
	Effects     []Effect          `json:"effects,omitempty" bson:"effects,omitempty"`
	WeightField string            `json:"weight_field,omitempty" bson:"weight_field,omitempty"`
}

// LogScale reports whether the effect axis is logarithmic.
func (d *Data) LogScale() bool {
	return d.Scale == ScaleLog
}

// Null returns the reference value of "no effect": the configured
// null_value, or 1 on log scales and 0 on linear scales.
func (d *Data) Null() float64 {
	if d.NullValue != nil {
		return *d.NullValue
	}
	if d.LogScale() {
		return DefaultNullLog
	}
	return DefaultNullLinear
}

// HeaderLabel returns the display label for a metadata field, falling
// back to the field name itself.
func (d *Data) HeaderLabel(field string) string {
	if label, ok := d.Labels[field]; ok {
		return label
	}
	return field
}

// =============================================================================
// Row - One Table Entry
// =============================================================================

// Row is a single table entry. Its kind decides how it renders: data
// rows draw point markers with CI whiskers, summary rows draw a diamond
// spanning the interval, header rows draw styled text only, and spacer
// rows occupy half a row height without content.
type Row struct {
	ID    string `json:"id,omitempty" bson:"id,omitempty"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`
	Group string `json:"group,omitempty" bson:"group,omitempty"` // leaf group ID
	Kind  string `json:"kind,omitempty" bson:"kind,omitempty"`   // data (default), header, summary, spacer

	// Primary effect. When the spec defines an explicit effects list,
	// these fields are ignored and all values come from Meta.
	Point *float64 `json:"point,omitempty" bson:"point,omitempty"`
	Lower *float64 `json:"lower,omitempty" bson:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty" bson:"upper,omitempty"`

	// Meta holds all column data keyed by field name.
	Meta map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`

	// Text styling.
	Bold       bool   `json:"bold,omitempty" bson:"bold,omitempty"`
	Italic     bool   `json:"italic,omitempty" bson:"italic,omitempty"`
	Indent     int    `json:"indent,omitempty" bson:"indent,omitempty"` // extra indent levels
	Badge      string `json:"badge,omitempty" bson:"badge,omitempty"`
	TextColor  string `json:"text_color,omitempty" bson:"text_color,omitempty"`
	Background string `json:"background,omitempty" bson:"background,omitempty"`

	// Marker overrides the primary effect's marker style.
	Marker *MarkerOverride `json:"marker,omitempty" bson:"marker,omitempty"`
}

// MarkerOverride restyles a row's primary marker. It never applies to
// secondary effects.
type MarkerOverride struct {
	Color   string   `json:"color,omitempty" bson:"color,omitempty"`
	Shape   string   `json:"shape,omitempty" bson:"shape,omitempty"`
	Opacity *float64 `json:"opacity,omitempty" bson:"opacity,omitempty"`
	Size    *float64 `json:"size,omitempty" bson:"size,omitempty"`
}

// IsData reports whether the row renders as a normal data row.
func (r *Row) IsData() bool { return r.Kind == "" || r.Kind == RowKindData }

// IsHeader reports whether the row is a text-only header row.
func (r *Row) IsHeader() bool { return r.Kind == RowKindHeader }

// IsSummary reports whether the row renders a summary diamond.
func (r *Row) IsSummary() bool { return r.Kind == RowKindSummary }

// IsSpacer reports whether the row is a half-height spacer.
func (r *Row) IsSpacer() bool { return r.Kind == RowKindSpacer }

// Estimate is one resolved point/interval triple. Missing components
// are NaN, never zero.
type Estimate struct {
	Point float64
	Lower float64
	Upper float64
}

// HasPoint reports whether the point estimate is present.
func (e Estimate) HasPoint() bool { return !math.IsNaN(e.Point) }

// HasInterval reports whether both interval bounds are present.
func (e Estimate) HasInterval() bool {
	return !math.IsNaN(e.Lower) && !math.IsNaN(e.Upper)
}

// Estimate resolves the row's values for one effect. A nil effect (or
// one without a point field) reads the row's primary Point/Lower/Upper
// fields; otherwise the values come from Meta under the effect's field
// names.
func (r *Row) Estimate(e *Effect) Estimate {
	if e == nil || e.Field == "" {
		return Estimate{
			Point: ptrValue(r.Point),
			Lower: ptrValue(r.Lower),
			Upper: ptrValue(r.Upper),
		}
	}
	return Estimate{
		Point: MetaFloat(r.Meta, e.Field),
		Lower: MetaFloat(r.Meta, e.Lower),
		Upper: MetaFloat(r.Meta, e.Upper),
	}
}

func ptrValue(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// =============================================================================
// Group - Hierarchy Node
// =============================================================================

// Group is one node of the collapsible row hierarchy. Depth is derived
// from the parent chain during resolution; when the spec also sets it
// explicitly it must match.
type Group struct {
	ID        string `json:"id" bson:"id"`
	Label     string `json:"label,omitempty" bson:"label,omitempty"`
	Parent    string `json:"parent,omitempty" bson:"parent,omitempty"`
	Depth     int    `json:"depth,omitempty" bson:"depth,omitempty"`
	Collapsed bool   `json:"collapsed,omitempty" bson:"collapsed,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (g *Group) DisplayLabel() string {
	if g.Label != "" {
		return g.Label
	}
	return g.ID
}

// =============================================================================
// Effect - Named Point/Interval Triple
// =============================================================================

// Effect names the metadata fields holding one point estimate and its
// interval, plus optional per-effect marker styling. A spec with an
// explicit effects list draws every listed effect per row, vertically
// offset around the row center.
type Effect struct {
	ID      string  `json:"id,omitempty" bson:"id,omitempty"`
	Label   string  `json:"label,omitempty" bson:"label,omitempty"`
	Field   string  `json:"field" bson:"field"` // Meta key of the point estimate
	Lower   string  `json:"lower,omitempty" bson:"lower,omitempty"`
	Upper   string  `json:"upper,omitempty" bson:"upper,omitempty"`
	Color   string  `json:"color,omitempty" bson:"color,omitempty"`
	Shape   string  `json:"shape,omitempty" bson:"shape,omitempty"`
	Opacity float64 `json:"opacity,omitempty" bson:"opacity,omitempty"`
}

// =============================================================================
// Axis, Annotations, Interaction, Labels
// =============================================================================

// AxisConfig tunes the effect axis computation. All fields are
// optional; zero values select the documented defaults.
type AxisConfig struct {
	Min          *float64  `json:"min,omitempty" bson:"min,omitempty"`
	Max          *float64  `json:"max,omitempty" bson:"max,omitempty"`
	Ticks        int       `json:"ticks,omitempty" bson:"ticks,omitempty"`
	TickValues   []float64 `json:"tick_values,omitempty" bson:"tick_values,omitempty"`
	Gridlines    *bool     `json:"gridlines,omitempty" bson:"gridlines,omitempty"`
	ClipFactor   float64   `json:"clip_factor,omitempty" bson:"clip_factor,omitempty"`     // default 3.0
	IncludeNull  *bool     `json:"include_null,omitempty" bson:"include_null,omitempty"`   // default true
	Symmetric    bool      `json:"symmetric,omitempty" bson:"symmetric,omitempty"`         // explicit true only
	NullTick     bool      `json:"null_tick,omitempty" bson:"null_tick,omitempty"`         // force a tick at the null value
	MarkerMargin *bool     `json:"marker_margin,omitempty" bson:"marker_margin,omitempty"` // default true
	Label        string    `json:"label,omitempty" bson:"label,omitempty"`
}

// EffectiveClipFactor returns the CI clipping factor (default 3).
func (a *AxisConfig) EffectiveClipFactor() float64 {
	if a.ClipFactor > 0 {
		return a.ClipFactor
	}
	return 3.0
}

// NullIncluded reports whether the axis must include the null value
// (default true).
func (a *AxisConfig) NullIncluded() bool {
	return a.IncludeNull == nil || *a.IncludeNull
}

// MarginEnabled reports whether the plot region adds the half-marker
// margin (default true).
func (a *AxisConfig) MarginEnabled() bool {
	return a.MarkerMargin == nil || *a.MarkerMargin
}

// Annotation is a labeled vertical reference line at a fixed axis value.
type Annotation struct {
	Value float64 `json:"value" bson:"value"`
	Label string  `json:"label,omitempty" bson:"label,omitempty"`
	Style string  `json:"style,omitempty" bson:"style,omitempty"` // solid (default), dashed, dotted
	Color string  `json:"color,omitempty" bson:"color,omitempty"`
}

// Interaction gates the mutation entry points of interactive plots.
// A spec without an interaction section allows everything; a present
// section enables only what it sets.
type Interaction struct {
	Sort          bool     `json:"sort,omitempty" bson:"sort,omitempty"`
	Collapse      bool     `json:"collapse,omitempty" bson:"collapse,omitempty"`
	Select        bool     `json:"select,omitempty" bson:"select,omitempty"`
	Hover         bool     `json:"hover,omitempty" bson:"hover,omitempty"`
	Resize        bool     `json:"resize,omitempty" bson:"resize,omitempty"`
	Export        bool     `json:"export,omitempty" bson:"export,omitempty"`
	TooltipFields []string `json:"tooltip_fields,omitempty" bson:"tooltip_fields,omitempty"`
}

// LayoutHints carries sizing preferences from the spec.
type LayoutHints struct {
	PlotWidth float64 `json:"plot_width,omitempty" bson:"plot_width,omitempty"` // fixed plot area width in px
	AutoFit   bool    `json:"auto_fit,omitempty" bson:"auto_fit,omitempty"`
}

// Labels holds the text blocks around the table.
type Labels struct {
	Title    string `json:"title,omitempty" bson:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Caption  string `json:"caption,omitempty" bson:"caption,omitempty"`
	Footnote string `json:"footnote,omitempty" bson:"footnote,omitempty"`
}

// =============================================================================
// Metadata Access Helpers
// =============================================================================

// MetaFloat extracts a numeric metadata value. Missing keys and
// non-numeric values return NaN; JSON and BSON number representations
// are both handled.
func MetaFloat(meta map[string]any, key string) float64 {
	if meta == nil || key == "" {
		return math.NaN()
	}
	return toFloat(meta[key])
}

// MetaString extracts a string metadata value, formatting numbers when
// needed. Missing keys return "".
func MetaString(meta map[string]any, key string) string {
	if meta == nil || key == "" {
		return ""
	}
	switch v := meta[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		if f := toFloat(v); !math.IsNaN(f) {
			return trimNumber(f)
		}
		return ""
	}
}

// MetaFloats extracts a numeric slice metadata value (sparklines,
// distributions). Non-numeric elements become NaN; missing keys return
// nil.
func MetaFloats(meta map[string]any, key string) []float64 {
	if meta == nil || key == "" {
		return nil
	}
	switch v := meta[key].(type) {
	case []float64:
		out := make([]float64, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]float64, len(v))
		for i, e := range v {
			out[i] = toFloat(e)
		}
		return out
	default:
		return nil
	}
}

// MetaInt extracts an integer metadata value; missing or non-numeric
// values return 0, false.
func MetaInt(meta map[string]any, key string) (int, bool) {
	f := MetaFloat(meta, key)
	if math.IsNaN(f) {
		return 0, false
	}
	return int(math.Round(f)), true
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func trimNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
