// Package layout composes the full plot geometry: column x-placement,
// row y-placement, header tiers, the axis band, and the framing text
// blocks.
//
// [Build] is a pure function of the spec, the resolved theme, and the
// display sequence. It owns every shared pixel decision, so the
// renderers consume identical geometry and cannot drift apart. All
// coordinates are in pixels with the origin at the top-left of the
// figure.
package layout

import (
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
	"github.com/matzehuels/forestplot/pkg/plot/axis"
	"github.com/matzehuels/forestplot/pkg/plot/measure"
	"github.com/matzehuels/forestplot/pkg/plot/scale"
	"github.com/matzehuels/forestplot/pkg/plot/sequence"
	"github.com/matzehuels/forestplot/pkg/plot/styles"
)

const (
	// defaultPlotWidth is the forest column width when the spec gives
	// no layout hint.
	defaultPlotWidth = 280

	// minPlotWidth is the floor the forest column never shrinks below,
	// even under auto-fit pressure.
	minPlotWidth = 120

	// lineHeight converts a font size into the height of its text line.
	lineHeight = 1.5

	// axisContentHeight covers tick marks and tick labels; the axis
	// title line is added on top when configured.
	axisContentHeight = 26
)

// =============================================================================
// Geometry Primitives
// =============================================================================

// Band is a horizontal strip spanning the full figure width. A zero
// Height marks an absent band.
type Band struct {
	Y      float64
	Height float64
}

// Bottom returns the y coordinate below the band.
func (b Band) Bottom() float64 { return b.Y + b.Height }

// Region is a horizontal pixel span.
type Region struct {
	X     float64
	Width float64
}

// Right returns the x coordinate past the region.
func (r Region) Right() float64 { return r.X + r.Width }

// Cell is one leaf column with its final horizontal placement.
type Cell struct {
	Column *forest.Column
	X      float64
	Width  float64
}

// Right returns the x coordinate past the cell.
func (c Cell) Right() float64 { return c.X + c.Width }

// CenterX returns the horizontal center of the cell.
func (c Cell) CenterX() float64 { return c.X + c.Width/2 }

// TextX returns the text anchor x for the cell's effective alignment,
// inset by the cell padding for edge-anchored text.
func (c Cell) TextX(padding float64) float64 {
	switch c.Column.EffectiveAlign() {
	case forest.AlignRight:
		return c.Right() - padding
	case forest.AlignCenter:
		return c.CenterX()
	default:
		return c.X + padding
	}
}

// Span is an upper-tier header covering a top-level column group.
type Span struct {
	Column *forest.Column
	X      float64
	Width  float64
}

// CenterX returns the horizontal center of the span.
func (s Span) CenterX() float64 { return s.X + s.Width/2 }

// Slot is one display sequence entry with its vertical placement.
type Slot struct {
	Entry  sequence.Entry
	Y      float64
	Height float64

	// DataIndex is the ordinal among visible data rows, the input to
	// parity banding; -1 for headers, summaries, and spacers.
	DataIndex int
}

// CenterY returns the vertical center of the slot.
func (s Slot) CenterY() float64 { return s.Y + s.Height/2 }

// =============================================================================
// Layout
// =============================================================================

// Layout is the complete geometry of one rendered plot.
type Layout struct {
	Width  float64
	Height float64

	Title   Band // title and subtitle block
	Header  Band // column header band
	TwoTier bool // upper group tier present; tiers split Header.Height evenly

	Columns []Cell // leaf columns in left-to-right order
	Spans   []Span // upper-tier group headers
	Plot    Region // forest column

	Rows []Slot
	Body Band

	Axis     axis.Axis
	AxisBand Band

	Notes Band // caption and footnote block

	// Banding is the resolved row banding mode; see styles.RowBand.
	Banding string
}

// Scale maps axis domain values onto the plot region's pixel span.
func (l *Layout) Scale() *scale.Scale {
	return l.Axis.Scale(l.Plot.X, l.Plot.Right())
}

// EffectOffsets returns symmetric vertical offsets around a row center
// for n stacked effect markers, ordered like the effect list.
func EffectOffsets(n int, spacing float64) []float64 {
	offsets := make([]float64, n)
	for i := range offsets {
		offsets[i] = (float64(i) - float64(n-1)/2) * spacing
	}
	return offsets
}

// =============================================================================
// Build
// =============================================================================

// Option configures one Build pass.
type Option func(*builder)

// WithMeasurer swaps the text measurer; the default is the font-free
// estimator.
func WithMeasurer(m measure.Measurer) Option {
	return func(b *builder) { b.measurer = m }
}

// WithColumnWidths applies interactive per-column width overrides,
// keyed by column key. Overrides win over fixed and measured widths.
func WithColumnWidths(widths map[string]float64) Option {
	return func(b *builder) { b.widths = widths }
}

// WithTargetWidth sets the viewport width auto-fit stretches the plot
// region toward. Ignored unless the spec opts into auto-fit.
func WithTargetWidth(w float64) Option {
	return func(b *builder) { b.targetWidth = w }
}

type builder struct {
	spec        *forest.Spec
	theme       *theme.Theme
	entries     []sequence.Entry
	measurer    measure.Measurer
	widths      map[string]float64
	targetWidth float64
}

// Build composes the layout for one resolved display sequence. A nil
// theme falls back to the default preset.
func Build(spec *forest.Spec, th *theme.Theme, entries []sequence.Entry, opts ...Option) *Layout {
	b := builder{spec: spec, theme: th, entries: entries, measurer: measure.Estimator{}}
	for _, opt := range opts {
		opt(&b)
	}
	if b.theme == nil {
		def := theme.Default()
		b.theme = &def
	}
	return b.build()
}

func (b *builder) build() *Layout {
	th := b.theme
	sp := th.Spacing

	l := &Layout{
		Banding: styles.Mode(th.Banding, len(b.spec.Data.Groups) > 0),
	}
	b.composeColumns(l)

	// Vertical composition, top to bottom.
	y := sp.Margin
	y = b.placeTitle(l, y)
	y = b.placeHeader(l, y)
	y = b.placeRows(l, y)

	y += sp.AxisGap
	axisH := float64(axisContentHeight)
	if b.spec.Axis.Label != "" {
		axisH += th.Typography.BaseSize * lineHeight
	}
	l.AxisBand = Band{Y: y, Height: axisH}
	y = l.AxisBand.Bottom()

	y = b.placeNotes(l, y)
	l.Height = y + sp.Margin

	l.Axis = axis.Compute(axis.Params{
		Rows:    b.axisRows(),
		Effects: b.spec.EffectList(),
		Config:  b.spec.Axis,
		Log:     b.spec.Data.LogScale(),
		Null:    b.spec.Data.Null(),
		WidthPx: l.Plot.Width,
		PointPx: th.Shapes.PointSize,
	})
	return l
}

func (b *builder) placeTitle(l *Layout, y float64) float64 {
	th := b.theme
	h := 0.0
	if b.spec.Labels.Title != "" {
		h += th.Typography.TitleSize * lineHeight
	}
	if b.spec.Labels.Subtitle != "" {
		h += th.Typography.HeaderSize * lineHeight
	}
	l.Title = Band{Y: y, Height: h}
	return l.Title.Bottom()
}

func (b *builder) placeHeader(l *Layout, y float64) float64 {
	th := b.theme
	tier := th.Typography.HeaderSize + 2*th.Spacing.HeaderPadding
	h := tier
	if l.TwoTier {
		h = 2 * tier
	}
	l.Header = Band{Y: y, Height: h}
	return l.Header.Bottom()
}

func (b *builder) placeRows(l *Layout, y float64) float64 {
	sp := b.theme.Spacing
	rowH := sp.RowHeight
	spacerH := rowH * sp.SpacerFraction

	l.Body.Y = y
	l.Rows = make([]Slot, 0, len(b.entries))
	dataIndex := 0
	for _, e := range b.entries {
		h := rowH
		di := -1
		if e.Kind == sequence.EntryRow {
			switch {
			case e.Row.IsSpacer():
				h = spacerH
			case e.Row.IsData():
				di = dataIndex
				dataIndex++
			}
		}
		l.Rows = append(l.Rows, Slot{Entry: e, Y: y, Height: h, DataIndex: di})
		y += h
	}

	// A trailing overall/pooled row stands apart from the table body.
	if n := len(l.Rows); n > 0 {
		last := &l.Rows[n-1]
		if last.Entry.Kind == sequence.EntryRow && last.Entry.Depth == 0 && last.Entry.Row.IsSummary() {
			last.Y += spacerH
			y += spacerH
		}
	}

	l.Body.Height = y - l.Body.Y
	return y
}

func (b *builder) placeNotes(l *Layout, y float64) float64 {
	th := b.theme
	h := 0.0
	if b.spec.Labels.Caption != "" {
		h += th.Typography.BaseSize * lineHeight
	}
	if b.spec.Labels.Footnote != "" {
		h += th.Typography.BaseSize * lineHeight
	}
	if h > 0 {
		y += th.Spacing.AxisGap
	}
	l.Notes = Band{Y: y, Height: h}
	return l.Notes.Bottom()
}

// axisRows collects every row carrying estimates, independent of
// collapse and filter state: folding a group away must not move the
// axis.
func (b *builder) axisRows() []*forest.Row {
	rows := make([]*forest.Row, 0, len(b.spec.Data.Rows)+1)
	for i := range b.spec.Data.Rows {
		rows = append(rows, &b.spec.Data.Rows[i])
	}
	if b.spec.Data.Overall != nil {
		rows = append(rows, b.spec.Data.Overall)
	}
	return rows
}
