package sink

import (
	"encoding/json"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/plot/format"
	"github.com/matzehuels/forestplot/pkg/plot/layout"
	"github.com/matzehuels/forestplot/pkg/plot/sequence"
)

// LayoutVersion identifies the JSON layout record format. Bump it when
// a field changes meaning; additions keep the version.
const LayoutVersion = 1

// JSONOption configures the JSON sink.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	svgOpts []SVGOption
}

// WithJSONSVGOptions forwards SVG options into the shared composition
// step, so the record describes exactly the geometry the SVG sink
// would draw under the same options.
func WithJSONSVGOptions(opts ...SVGOption) JSONOption {
	return func(r *jsonRenderer) { r.svgOpts = append(r.svgOpts, opts...) }
}

type jsonLayout struct {
	Version int     `json:"version"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`

	Title    *jsonBand `json:"title,omitempty"`
	Header   jsonBand  `json:"header"`
	Body     jsonBand  `json:"body"`
	AxisBand jsonBand  `json:"axis_band"`
	Notes    *jsonBand `json:"notes,omitempty"`

	Columns []jsonColumn `json:"columns"`
	Spans   []jsonSpan   `json:"spans,omitempty"`
	Plot    jsonRegion   `json:"plot"`
	Axis    jsonAxis     `json:"axis"`
	Rows    []jsonRow    `json:"rows"`
	Banding string       `json:"banding"`
}

type jsonBand struct {
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
}

type jsonRegion struct {
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

type jsonColumn struct {
	Key    string  `json:"key"`
	Header string  `json:"header"`
	Type   string  `json:"type"`
	Align  string  `json:"align"`
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
}

type jsonSpan struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

type jsonAxis struct {
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	RegionMin float64   `json:"region_min"`
	RegionMax float64   `json:"region_max"`
	Ticks     []float64 `json:"ticks"`
	Log       bool      `json:"log,omitempty"`
	Null      float64   `json:"null"`
}

type jsonRow struct {
	Kind      string            `json:"kind"`
	ID        string            `json:"id,omitempty"`
	Label     string            `json:"label,omitempty"`
	Y         float64           `json:"y"`
	Height    float64           `json:"height"`
	Depth     int               `json:"depth,omitempty"`
	DataIndex int               `json:"data_index"`
	Collapsed bool              `json:"collapsed,omitempty"`
	RowCount  int               `json:"row_count,omitempty"`
	Cells     map[string]string `json:"cells,omitempty"`
}

// RenderJSON emits the composed layout as a versioned JSON record:
// every band, column, row slot, and axis domain the SVG sink draws
// from, plus the display string of each table cell. Interactive
// clients hit-test and re-render against this record without
// reimplementing any layout rule.
func RenderJSON(spec *forest.Spec, opts ...JSONOption) ([]byte, error) {
	r := &jsonRenderer{}
	for _, opt := range opts {
		opt(r)
	}
	sv := newSVGRenderer(r.svgOpts...)
	l, _, err := sv.compose(spec)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(layoutRecord(l, spec), "", "  ")
}

// LayoutJSON emits an already composed layout as the same versioned
// record RenderJSON produces. Interactive shells serve their current
// geometry through this entry point so live and static descriptions
// never diverge.
func LayoutJSON(l *layout.Layout, spec *forest.Spec) ([]byte, error) {
	return json.MarshalIndent(layoutRecord(l, spec), "", "  ")
}

func layoutRecord(l *layout.Layout, spec *forest.Spec) jsonLayout {
	out := jsonLayout{
		Version:  LayoutVersion,
		Width:    l.Width,
		Height:   l.Height,
		Header:   jsonBand{l.Header.Y, l.Header.Height},
		Body:     jsonBand{l.Body.Y, l.Body.Height},
		AxisBand: jsonBand{l.AxisBand.Y, l.AxisBand.Height},
		Plot:     jsonRegion{l.Plot.X, l.Plot.Width},
		Axis: jsonAxis{
			Min:       l.Axis.Min,
			Max:       l.Axis.Max,
			RegionMin: l.Axis.RegionMin,
			RegionMax: l.Axis.RegionMax,
			Ticks:     l.Axis.Ticks,
			Log:       l.Axis.Log,
			Null:      spec.Data.Null(),
		},
		Banding: l.Banding,
	}
	if l.Title.Height > 0 {
		out.Title = &jsonBand{l.Title.Y, l.Title.Height}
	}
	if l.Notes.Height > 0 {
		out.Notes = &jsonBand{l.Notes.Y, l.Notes.Height}
	}
	for i := range l.Columns {
		c := &l.Columns[i]
		out.Columns = append(out.Columns, jsonColumn{
			Key:    c.Column.Key(),
			Header: format.Header(c.Column, &spec.Data),
			Type:   c.Column.EffectiveType(),
			Align:  c.Column.EffectiveAlign(),
			X:      c.X,
			Width:  c.Width,
		})
	}
	for _, sp := range l.Spans {
		out.Spans = append(out.Spans, jsonSpan{
			Label: format.Header(sp.Column, &spec.Data),
			X:     sp.X,
			Width: sp.Width,
		})
	}
	for _, s := range l.Rows {
		out.Rows = append(out.Rows, rowRecord(l, s))
	}
	return out
}

func rowRecord(l *layout.Layout, s layout.Slot) jsonRow {
	if s.Entry.Kind == sequence.EntryHeader {
		return jsonRow{
			Kind:      "group",
			Label:     s.Entry.Group.DisplayLabel(),
			Y:         s.Y,
			Height:    s.Height,
			Depth:     s.Entry.Depth,
			DataIndex: -1,
			Collapsed: s.Entry.Collapsed,
			RowCount:  s.Entry.RowCount,
		}
	}
	r := s.Entry.Row
	rec := jsonRow{
		Kind:      rowKind(r),
		ID:        r.ID,
		Label:     r.Label,
		Y:         s.Y,
		Height:    s.Height,
		Depth:     s.Entry.Depth,
		DataIndex: s.DataIndex,
	}
	if r.IsSpacer() {
		return rec
	}
	cells := map[string]string{}
	for i := range l.Columns {
		c := l.Columns[i].Column
		if v := format.Cell(r, c); v != "" {
			cells[c.Key()] = v
		}
	}
	if len(cells) > 0 {
		rec.Cells = cells
	}
	return rec
}

func rowKind(r *forest.Row) string {
	switch {
	case r.IsSummary():
		return forest.RowKindSummary
	case r.IsHeader():
		return forest.RowKindHeader
	case r.IsSpacer():
		return forest.RowKindSpacer
	}
	return forest.RowKindData
}
