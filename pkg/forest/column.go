package forest

import (
	"encoding/json"

	"github.com/matzehuels/forestplot/pkg/errors"
)

// =============================================================================
// Column Types - Single Source of Truth
// =============================================================================

// Column types. Each type carries its own option variant, decoded from
// the column's options object.
const (
	ColumnText      = "text" // default when empty
	ColumnNumeric   = "numeric"
	ColumnInterval  = "interval"
	ColumnBar       = "bar"
	ColumnPValue    = "pvalue"
	ColumnSparkline = "sparkline"
	ColumnIcon      = "icon"
	ColumnBadge     = "badge"
	ColumnStars     = "stars"
	ColumnImg       = "img"
	ColumnReference = "reference"
	ColumnRange     = "range"
	ColumnForest    = "forest"
	ColumnVizBar    = "viz_bar"
	ColumnBoxplot   = "viz_boxplot"
	ColumnViolin    = "viz_violin"
)

// Text alignments.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// FieldLabel is the reserved column field resolved from Row.Label
// rather than from row metadata.
const FieldLabel = "label"

// =============================================================================
// Column - Table Column or Column Group
// =============================================================================

// Column describes one table column, or a column group when Columns is
// non-empty. Groups contribute a spanning header in the upper header
// tier; their width is the sum of their leaves, with any header
// shortfall distributed evenly across the leaves.
//
// Width zero requests automatic sizing from the measured content; a
// positive width is fixed in pixels (but may still grow through group
// header distribution).
type Column struct {
	ID       string  `json:"id,omitempty" bson:"id,omitempty"`
	Field    string  `json:"field,omitempty" bson:"field,omitempty"`
	Header   string  `json:"header,omitempty" bson:"header,omitempty"`
	Type     string  `json:"type,omitempty" bson:"type,omitempty"`
	Position string  `json:"position,omitempty" bson:"position,omitempty"` // left (default), right
	Width    float64 `json:"width,omitempty" bson:"width,omitempty"`
	Align    string  `json:"align,omitempty" bson:"align,omitempty"`

	// Options holds the decoded per-type option variant; use the typed
	// accessors or switch on the concrete type.
	Options ColumnOptions `json:"-" bson:"-"`

	// Columns makes this a column group when non-empty.
	Columns []Column `json:"columns,omitempty" bson:"columns,omitempty"`
}

// IsGroup reports whether the column is a group of nested columns.
func (c *Column) IsGroup() bool { return len(c.Columns) > 0 }

// EffectiveType returns the column type with the text default applied.
func (c *Column) EffectiveType() string {
	if c.Type == "" {
		return ColumnText
	}
	return c.Type
}

// EffectiveOptions returns the decoded options variant, building a
// defaulted one when the column was assembled in code rather than
// parsed. Unknown types fall back to text options.
func (c *Column) EffectiveOptions() ColumnOptions {
	if c.Options != nil {
		return c.Options
	}
	opts, err := decodeOptions(c.EffectiveType(), nil)
	if err != nil {
		return TextOptions{}
	}
	return opts
}

// EffectiveAlign returns the text alignment with per-type defaults:
// numeric-like columns right-align, glyph columns center, everything
// else left-aligns.
func (c *Column) EffectiveAlign() string {
	if c.Align != "" {
		return c.Align
	}
	switch c.EffectiveType() {
	case ColumnNumeric, ColumnInterval, ColumnRange, ColumnPValue:
		return AlignRight
	case ColumnIcon, ColumnStars, ColumnBadge:
		return AlignCenter
	}
	return AlignLeft
}

// Key returns a stable identifier for width overrides and sorting: the
// ID when set, otherwise the field, otherwise the header.
func (c *Column) Key() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Field != "":
		return c.Field
	default:
		return c.Header
	}
}

// Leaves appends all leaf columns beneath c (or c itself) to dst and
// returns it.
func (c *Column) Leaves(dst []*Column) []*Column {
	if !c.IsGroup() {
		return append(dst, c)
	}
	for i := range c.Columns {
		dst = c.Columns[i].Leaves(dst)
	}
	return dst
}

// =============================================================================
// Column Options - Tagged Variants
// =============================================================================

// ColumnOptions is the closed set of per-type column options. The
// concrete type always matches the column's type; decoding fills
// defaults so accessors never see zero-value surprises.
type ColumnOptions interface {
	columnOptions()
}

// TextOptions configures text columns.
type TextOptions struct {
	MaxChars int `json:"max_chars,omitempty"` // truncate with ellipsis; 0 = no limit
}

// NumericOptions configures numeric columns.
type NumericOptions struct {
	Decimals int `json:"decimals"` // default 2
}

// IntervalOptions configures point-plus-interval columns. Field
// overrides default to the row's primary effect fields.
type IntervalOptions struct {
	Decimals   int    `json:"decimals"` // default 2
	PointField string `json:"point_field,omitempty"`
	LowerField string `json:"lower_field,omitempty"`
	UpperField string `json:"upper_field,omitempty"`
}

// BarOptions configures horizontal data bars.
type BarOptions struct {
	Max       float64 `json:"max,omitempty"` // 0 = auto from column values
	Color     string  `json:"color,omitempty"`
	ShowValue bool    `json:"show_value,omitempty"`
}

// PValueOptions configures p-value columns.
type PValueOptions struct {
	Decimals   int     `json:"decimals"`            // default 3
	Threshold  float64 `json:"threshold,omitempty"` // default 0.001
	Scientific bool    `json:"scientific,omitempty"`
}

// SparklineOptions configures inline line charts over a numeric slice.
type SparklineOptions struct {
	Color string   `json:"color,omitempty"`
	Min   *float64 `json:"min,omitempty"` // nil = auto
	Max   *float64 `json:"max,omitempty"` // nil = auto
}

// IconOptions maps cell values to glyphs.
type IconOptions struct {
	Map map[string]string `json:"map,omitempty"`
}

// BadgeOptions maps cell values to badge colors.
type BadgeOptions struct {
	Colors map[string]string `json:"colors,omitempty"`
}

// StarsOptions configures star rating gauges.
type StarsOptions struct {
	Max int `json:"max"` // default 5
}

// ImgOptions configures embedded images. Only data: URIs render; the
// output must stay self-contained.
type ImgOptions struct {
	Height float64 `json:"height,omitempty"` // 0 = fit row content height
}

// ReferenceOptions configures citation/reference columns.
type ReferenceOptions struct {
	Text string `json:"text,omitempty"` // static text; empty renders the field value
}

// RangeOptions configures lower-upper range columns.
type RangeOptions struct {
	Decimals   int    `json:"decimals"` // default 2
	LowerField string `json:"lower_field,omitempty"`
	UpperField string `json:"upper_field,omitempty"`
}

// ForestOptions configures satellite CI strips that reuse the main
// effect axis scale inside a table column.
type ForestOptions struct {
	PointField string `json:"point_field,omitempty"` // default: primary effect
	LowerField string `json:"lower_field,omitempty"`
	UpperField string `json:"upper_field,omitempty"`
}

// VizBarOptions configures miniature bar visualizations.
type VizBarOptions struct {
	Max   float64 `json:"max,omitempty"` // 0 = auto
	Color string  `json:"color,omitempty"`
}

// BoxplotOptions configures miniature boxplots. Fields may name five
// scalar fields (min, q1, median, q3, max); a single entry names one
// array field holding the five values.
type BoxplotOptions struct {
	Fields []string `json:"fields,omitempty"`
	Color  string   `json:"color,omitempty"`
}

// ViolinOptions configures miniature violin plots over a density array.
type ViolinOptions struct {
	Field string `json:"field,omitempty"` // default: the column's field
	Color string `json:"color,omitempty"`
}

func (TextOptions) columnOptions()      {}
func (NumericOptions) columnOptions()   {}
func (IntervalOptions) columnOptions()  {}
func (BarOptions) columnOptions()       {}
func (PValueOptions) columnOptions()    {}
func (SparklineOptions) columnOptions() {}
func (IconOptions) columnOptions()      {}
func (BadgeOptions) columnOptions()     {}
func (StarsOptions) columnOptions()     {}
func (ImgOptions) columnOptions()       {}
func (ReferenceOptions) columnOptions() {}
func (RangeOptions) columnOptions()     {}
func (ForestOptions) columnOptions()    {}
func (VizBarOptions) columnOptions()    {}
func (BoxplotOptions) columnOptions()   {}
func (ViolinOptions) columnOptions()    {}

// =============================================================================
// JSON Round-Trip
// =============================================================================

// UnmarshalJSON decodes a column and dispatches its options object to
// the variant matching the column type. Unknown types fail here so
// structural errors surface before any layout work.
func (c *Column) UnmarshalJSON(data []byte) error {
	type columnAlias Column
	aux := struct {
		*columnAlias
		Options json.RawMessage `json:"options,omitempty"`
	}{columnAlias: (*columnAlias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	opts, err := decodeOptions(c.EffectiveType(), aux.Options)
	if err != nil {
		return err
	}
	c.Options = opts
	return nil
}

// MarshalJSON re-embeds the options variant under the options key.
func (c Column) MarshalJSON() ([]byte, error) {
	type columnAlias Column
	aux := struct {
		columnAlias
		Options ColumnOptions `json:"options,omitempty"`
	}{columnAlias: columnAlias(c), Options: c.Options}
	return json.Marshal(aux)
}

// decodeOptions unmarshals raw options into the variant for the column
// type and applies per-type defaults.
func decodeOptions(colType string, raw json.RawMessage) (ColumnOptions, error) {
	decode := func(v any) error {
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, v)
	}

	switch colType {
	case ColumnText:
		var o TextOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnNumeric:
		o := NumericOptions{Decimals: 2}
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnInterval:
		o := IntervalOptions{Decimals: 2}
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnBar:
		var o BarOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnPValue:
		o := PValueOptions{Decimals: 3, Threshold: 0.001}
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnSparkline:
		var o SparklineOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnIcon:
		var o IconOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnBadge:
		var o BadgeOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnStars:
		o := StarsOptions{Max: 5}
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnImg:
		var o ImgOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnReference:
		var o ReferenceOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnRange:
		o := RangeOptions{Decimals: 2}
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnForest:
		var o ForestOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnVizBar:
		var o VizBarOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnBoxplot:
		var o BoxplotOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	case ColumnViolin:
		var o ViolinOptions
		if err := decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidColumn, "unknown column type: %q", colType)
	}
}
