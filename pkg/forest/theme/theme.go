// Package theme defines the visual theme record for forest plots.
//
// A [Theme] is a closed record: every color, size, and spacing value the
// renderers consult lives here, so two renders with the same theme and
// spec produce identical geometry. Specs carry an optional partial
// [Spec] overlay; [Resolve] fills the gaps from a named preset or the
// package defaults. Preset files on disk are TOML documents decoding
// into [Spec].
package theme

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/forestplot/pkg/errors"
)

// Banding modes for data row backgrounds.
const (
	BandingAuto   = "auto"   // depth tints when groups exist, else alternating
	BandingParity = "parity" // force alternating bands
	BandingDepth  = "depth"  // force depth tints
	BandingNone   = "none"
)

// Marker shapes.
const (
	ShapeSquare   = "square"
	ShapeCircle   = "circle"
	ShapeDiamond  = "diamond"
	ShapeTriangle = "triangle"
)

// DefaultShapeCycle is the marker shape sequence used when neither the
// effect, the row, nor the theme assigns one.
var DefaultShapeCycle = []string{ShapeSquare, ShapeCircle, ShapeDiamond, ShapeTriangle}

// ValidShape reports whether name is a known marker shape.
func ValidShape(name string) bool {
	switch name {
	case ShapeSquare, ShapeCircle, ShapeDiamond, ShapeTriangle:
		return true
	}
	return false
}

// Colors holds every color the renderers use.
type Colors struct {
	Background      string   `json:"background,omitempty" toml:"background"`
	Text            string   `json:"text,omitempty" toml:"text"`
	HeaderText      string   `json:"header_text,omitempty" toml:"header_text"`
	Band            string   `json:"band,omitempty" toml:"band"`
	GroupTints      []string `json:"group_tints,omitempty" toml:"group_tints"`
	MarkerPalette   []string `json:"marker_palette,omitempty" toml:"marker_palette"`
	CI              string   `json:"ci,omitempty" toml:"ci"`
	NullLine        string   `json:"null_line,omitempty" toml:"null_line"`
	Gridline        string   `json:"gridline,omitempty" toml:"gridline"`
	BadgeBackground string   `json:"badge_background,omitempty" toml:"badge_background"`
	BadgeText       string   `json:"badge_text,omitempty" toml:"badge_text"`
	SummaryFill     string   `json:"summary_fill,omitempty" toml:"summary_fill"`
}

// Typography holds font settings. FontFile may point to a TTF/OTF file
// on disk for exact measurement; without it the renderers fall back to
// the character-class width estimator.
type Typography struct {
	Family     string  `json:"family,omitempty" toml:"family"`
	BaseSize   float64 `json:"base_size,omitempty" toml:"base_size"`
	HeaderSize float64 `json:"header_size,omitempty" toml:"header_size"`
	TitleSize  float64 `json:"title_size,omitempty" toml:"title_size"`
	BadgeScale float64 `json:"badge_scale,omitempty" toml:"badge_scale"`
	FontFile   string  `json:"font_file,omitempty" toml:"font_file"`
}

// Spacing holds the geometry constants of the table grid.
type Spacing struct {
	RowHeight      float64 `json:"row_height,omitempty" toml:"row_height"`
	SpacerFraction float64 `json:"spacer_fraction,omitempty" toml:"spacer_fraction"`
	CellPadding    float64 `json:"cell_padding,omitempty" toml:"cell_padding"`
	ColumnGap      float64 `json:"column_gap,omitempty" toml:"column_gap"`
	HeaderPadding  float64 `json:"header_padding,omitempty" toml:"header_padding"`
	AxisGap        float64 `json:"axis_gap,omitempty" toml:"axis_gap"`
	Margin         float64 `json:"margin,omitempty" toml:"margin"`
	Indent         float64 `json:"indent,omitempty" toml:"indent"`
	MinColumnWidth float64 `json:"min_column_width,omitempty" toml:"min_column_width"`
	MaxColumnWidth float64 `json:"max_column_width,omitempty" toml:"max_column_width"`
}

// MarkerStyle is one entry of the theme's marker style array, cycled by
// effect index when effects define no style of their own.
type MarkerStyle struct {
	Shape   string  `json:"shape,omitempty" toml:"shape"`
	Color   string  `json:"color,omitempty" toml:"color"`
	Opacity float64 `json:"opacity,omitempty" toml:"opacity"`
}

// Shapes holds marker and line geometry.
type Shapes struct {
	PointSize     float64       `json:"point_size,omitempty" toml:"point_size"`
	MarkerStyles  []MarkerStyle `json:"marker_styles,omitempty" toml:"marker_styles"`
	LineWidth     float64       `json:"line_width,omitempty" toml:"line_width"`
	ArrowSize     float64       `json:"arrow_size,omitempty" toml:"arrow_size"`
	DiamondHeight float64       `json:"diamond_height,omitempty" toml:"diamond_height"`
}

// Axis holds axis rendering defaults; the spec's axis config overrides
// them per plot.
type Axis struct {
	Ticks     int   `json:"ticks,omitempty" toml:"ticks"`
	Gridlines *bool `json:"gridlines,omitempty" toml:"gridlines"`
}

// ShowGridlines reports the effective gridline setting (default on).
func (a Axis) ShowGridlines() bool {
	return a.Gridlines == nil || *a.Gridlines
}

// GroupHeader holds group header row styling.
type GroupHeader struct {
	ChevronSize float64 `json:"chevron_size,omitempty" toml:"chevron_size"`
	ShowCount   *bool   `json:"show_count,omitempty" toml:"show_count"`
}

// ShowCounts reports whether headers append a "(N)" row count (default on).
func (g GroupHeader) ShowCounts() bool {
	return g.ShowCount == nil || *g.ShowCount
}

// Theme is the resolved, closed theme record. Construct with [Resolve],
// [Default], or [Named]; zero values are not usable directly.
type Theme struct {
	Name        string      `json:"name,omitempty" toml:"name"`
	Colors      Colors      `json:"colors" toml:"colors"`
	Typography  Typography  `json:"typography" toml:"typography"`
	Spacing     Spacing     `json:"spacing" toml:"spacing"`
	Shapes      Shapes      `json:"shapes" toml:"shapes"`
	Axis        Axis        `json:"axis" toml:"axis"`
	GroupHeader GroupHeader `json:"group_header" toml:"group_header"`
	Banding     string      `json:"banding,omitempty" toml:"banding"`
}

// Complete checks the sections a resolved record must carry before the
// renderers can use it. [Resolve] always produces complete records;
// directly constructed ones go through here before injection.
func (t *Theme) Complete() error {
	switch {
	case t.Colors.Background == "" || t.Colors.Text == "":
		return errors.New(errors.ErrCodeInvalidTheme, "injected theme is missing theme.colors")
	case t.Typography.BaseSize <= 0:
		return errors.New(errors.ErrCodeInvalidTheme, "injected theme is missing theme.typography")
	case t.Spacing.RowHeight <= 0:
		return errors.New(errors.ErrCodeInvalidTheme, "injected theme is missing theme.spacing")
	}
	return nil
}

// Spec is a partial theme overlay carried inline by a plot spec or
// loaded from a TOML preset file. Sections are pointers so explicit
// presence can be validated separately from field values.
type Spec struct {
	Preset      string       `json:"preset,omitempty" toml:"preset"`
	Colors      *Colors      `json:"colors,omitempty" toml:"colors"`
	Typography  *Typography  `json:"typography,omitempty" toml:"typography"`
	Spacing     *Spacing     `json:"spacing,omitempty" toml:"spacing"`
	Shapes      *Shapes      `json:"shapes,omitempty" toml:"shapes"`
	Axis        *Axis        `json:"axis,omitempty" toml:"axis"`
	GroupHeader *GroupHeader `json:"group_header,omitempty" toml:"group_header"`
	Banding     string       `json:"banding,omitempty" toml:"banding"`
}

// Validate checks the values an overlay explicitly supplies. Absent
// sections and zero-valued fields are fine; they resolve against the
// base theme in [Resolve].
func (s *Spec) Validate() error {
	if s == nil {
		return nil
	}
	if s.Preset != "" {
		if _, err := Named(s.Preset); err != nil {
			return err
		}
	}
	switch s.Banding {
	case "", BandingAuto, BandingParity, BandingDepth, BandingNone:
	default:
		return errors.New(errors.ErrCodeInvalidTheme, "invalid banding mode: %q", s.Banding)
	}
	if s.Colors != nil {
		if err := s.Colors.validate(); err != nil {
			return err
		}
	}
	if s.Typography != nil {
		if s.Typography.BaseSize < 0 || s.Typography.HeaderSize < 0 || s.Typography.TitleSize < 0 || s.Typography.BadgeScale < 0 {
			return errors.New(errors.ErrCodeInvalidTheme, "typography sizes cannot be negative")
		}
	}
	if s.Spacing != nil {
		if err := s.Spacing.validate(); err != nil {
			return err
		}
	}
	if s.Shapes != nil {
		if err := s.Shapes.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Colors) validate() error {
	named := []struct {
		name  string
		value string
	}{
		{"background", c.Background},
		{"text", c.Text},
		{"header_text", c.HeaderText},
		{"band", c.Band},
		{"ci", c.CI},
		{"null_line", c.NullLine},
		{"gridline", c.Gridline},
		{"badge_background", c.BadgeBackground},
		{"badge_text", c.BadgeText},
		{"summary_fill", c.SummaryFill},
	}
	for _, f := range named {
		if f.value == "" {
			continue
		}
		if err := errors.ValidateColor(f.value); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTheme, err, "colors.%s", f.name)
		}
	}
	for i, v := range c.GroupTints {
		if err := errors.ValidateColor(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTheme, err, "colors.group_tints[%d]", i)
		}
	}
	for i, v := range c.MarkerPalette {
		if err := errors.ValidateColor(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTheme, err, "colors.marker_palette[%d]", i)
		}
	}
	return nil
}

func (sp *Spacing) validate() error {
	values := []struct {
		name  string
		value float64
	}{
		{"row_height", sp.RowHeight},
		{"spacer_fraction", sp.SpacerFraction},
		{"cell_padding", sp.CellPadding},
		{"column_gap", sp.ColumnGap},
		{"header_padding", sp.HeaderPadding},
		{"axis_gap", sp.AxisGap},
		{"margin", sp.Margin},
		{"indent", sp.Indent},
		{"min_column_width", sp.MinColumnWidth},
		{"max_column_width", sp.MaxColumnWidth},
	}
	for _, f := range values {
		if f.value < 0 {
			return errors.New(errors.ErrCodeInvalidTheme, "spacing.%s cannot be negative", f.name)
		}
	}
	if sp.MinColumnWidth > 0 && sp.MaxColumnWidth > 0 && sp.MinColumnWidth > sp.MaxColumnWidth {
		return errors.New(errors.ErrCodeInvalidTheme, "spacing.min_column_width exceeds max_column_width")
	}
	return nil
}

func (sh *Shapes) validate() error {
	if sh.PointSize < 0 || sh.LineWidth < 0 || sh.ArrowSize < 0 || sh.DiamondHeight < 0 {
		return errors.New(errors.ErrCodeInvalidTheme, "shape sizes cannot be negative")
	}
	for i := range sh.MarkerStyles {
		m := &sh.MarkerStyles[i]
		if m.Shape != "" && !ValidShape(m.Shape) {
			return errors.New(errors.ErrCodeInvalidTheme, "shapes.marker_styles[%d]: unknown shape %q", i, m.Shape)
		}
		if m.Color != "" {
			if err := errors.ValidateColor(m.Color); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidTheme, err, "shapes.marker_styles[%d]", i)
			}
		}
	}
	return nil
}

// LoadFile reads a TOML theme overlay from disk.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read theme file %s", path)
	}
	return ParseSpec(data)
}

// ParseSpec decodes a TOML theme overlay.
func ParseSpec(data []byte) (*Spec, error) {
	var s Spec
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTheme, err, "parse theme overlay")
	}
	return &s, nil
}

// Resolve overlays a partial spec onto its base theme and returns the
// completed record. A nil spec returns the default theme. The base is
// the spec's named preset when set, otherwise the default theme; any
// field the overlay leaves at its zero value keeps the base value.
func Resolve(s *Spec) (Theme, error) {
	if s == nil {
		return Default(), nil
	}

	base := Default()
	if s.Preset != "" {
		named, err := Named(s.Preset)
		if err != nil {
			return Theme{}, err
		}
		base = named
	}

	if s.Colors != nil {
		overlayColors(&base.Colors, s.Colors)
	}
	if s.Typography != nil {
		overlayTypography(&base.Typography, s.Typography)
	}
	if s.Spacing != nil {
		overlaySpacing(&base.Spacing, s.Spacing)
	}
	if s.Shapes != nil {
		overlayShapes(&base.Shapes, s.Shapes)
	}
	if s.Axis != nil {
		if s.Axis.Ticks != 0 {
			base.Axis.Ticks = s.Axis.Ticks
		}
		if s.Axis.Gridlines != nil {
			base.Axis.Gridlines = s.Axis.Gridlines
		}
	}
	if s.GroupHeader != nil {
		if s.GroupHeader.ChevronSize != 0 {
			base.GroupHeader.ChevronSize = s.GroupHeader.ChevronSize
		}
		if s.GroupHeader.ShowCount != nil {
			base.GroupHeader.ShowCount = s.GroupHeader.ShowCount
		}
	}
	if s.Banding != "" {
		base.Banding = s.Banding
	}

	return base, nil
}

func overlayColors(dst *Colors, src *Colors) {
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.Text != "" {
		dst.Text = src.Text
	}
	if src.HeaderText != "" {
		dst.HeaderText = src.HeaderText
	}
	if src.Band != "" {
		dst.Band = src.Band
	}
	if len(src.GroupTints) > 0 {
		dst.GroupTints = src.GroupTints
	}
	if len(src.MarkerPalette) > 0 {
		dst.MarkerPalette = src.MarkerPalette
	}
	if src.CI != "" {
		dst.CI = src.CI
	}
	if src.NullLine != "" {
		dst.NullLine = src.NullLine
	}
	if src.Gridline != "" {
		dst.Gridline = src.Gridline
	}
	if src.BadgeBackground != "" {
		dst.BadgeBackground = src.BadgeBackground
	}
	if src.BadgeText != "" {
		dst.BadgeText = src.BadgeText
	}
	if src.SummaryFill != "" {
		dst.SummaryFill = src.SummaryFill
	}
}

func overlayTypography(dst *Typography, src *Typography) {
	if src.Family != "" {
		dst.Family = src.Family
	}
	if src.BaseSize != 0 {
		dst.BaseSize = src.BaseSize
	}
	if src.HeaderSize != 0 {
		dst.HeaderSize = src.HeaderSize
	}
	if src.TitleSize != 0 {
		dst.TitleSize = src.TitleSize
	}
	if src.BadgeScale != 0 {
		dst.BadgeScale = src.BadgeScale
	}
	if src.FontFile != "" {
		dst.FontFile = src.FontFile
	}
}

func overlaySpacing(dst *Spacing, src *Spacing) {
	if src.RowHeight != 0 {
		dst.RowHeight = src.RowHeight
	}
	if src.SpacerFraction != 0 {
		dst.SpacerFraction = src.SpacerFraction
	}
	if src.CellPadding != 0 {
		dst.CellPadding = src.CellPadding
	}
	if src.ColumnGap != 0 {
		dst.ColumnGap = src.ColumnGap
	}
	if src.HeaderPadding != 0 {
		dst.HeaderPadding = src.HeaderPadding
	}
	if src.AxisGap != 0 {
		dst.AxisGap = src.AxisGap
	}
	if src.Margin != 0 {
		dst.Margin = src.Margin
	}
	if src.Indent != 0 {
		dst.Indent = src.Indent
	}
	if src.MinColumnWidth != 0 {
		dst.MinColumnWidth = src.MinColumnWidth
	}
	if src.MaxColumnWidth != 0 {
		dst.MaxColumnWidth = src.MaxColumnWidth
	}
}

func overlayShapes(dst *Shapes, src *Shapes) {
	if src.PointSize != 0 {
		dst.PointSize = src.PointSize
	}
	if len(src.MarkerStyles) > 0 {
		dst.MarkerStyles = src.MarkerStyles
	}
	if src.LineWidth != 0 {
		dst.LineWidth = src.LineWidth
	}
	if src.ArrowSize != 0 {
		dst.ArrowSize = src.ArrowSize
	}
	if src.DiamondHeight != 0 {
		dst.DiamondHeight = src.DiamondHeight
	}
}
