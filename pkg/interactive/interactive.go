// Package interactive exposes a live plot handle for viewer shells.
//
// A [Plot] pairs an immutable spec, theme, and measurer with mutable
// view state: collapsed groups, sort order, row filter, column width
// overrides, and viewport size. Every mutation re-resolves the display
// sequence and rebuilds the layout, so the read accessors always
// describe the state a render of this instant would draw. Exports go
// through the same SVG sink as static rendering; a live view and a
// static render of the same state produce identical bytes.
//
// The spec's interaction section gates the user-facing mutations.
// Disabled mutations are silent no-ops rather than errors, so shells
// can wire key bindings unconditionally.
//
// A Plot is single-owner. It holds no internal locks; shells that share
// one instance across goroutines must serialize access themselves.
package interactive

import (
	"github.com/google/uuid"

	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
	"github.com/matzehuels/forestplot/pkg/plot/layout"
	"github.com/matzehuels/forestplot/pkg/plot/measure"
	"github.com/matzehuels/forestplot/pkg/plot/scale"
	"github.com/matzehuels/forestplot/pkg/plot/sequence"
	"github.com/matzehuels/forestplot/pkg/render/sink"
)

// State is the mutable view state of one plot instance.
type State struct {
	// Collapsed overrides collapse state per group ID; groups without
	// an entry keep their spec default.
	Collapsed map[string]bool

	// SortField and SortDesc reorder data rows within group buckets.
	SortField string
	SortDesc  bool

	// Filter hides data rows it rejects; nil shows every row.
	Filter func(*forest.Row) bool

	// ColumnWidths holds per-column width overrides keyed by column key.
	ColumnWidths map[string]float64

	// Width and Height size the rendered document. Zero keeps the
	// natural size; a positive width also drives auto-fit.
	Width  float64
	Height float64
}

// derived is everything recompute produces from one state.
type derived struct {
	entries []sequence.Entry
	layout  *layout.Layout
}

// Plot is a live handle over one spec. Construct with [New]; the zero
// value is not usable.
type Plot struct {
	id   string
	spec *forest.Spec
	th   theme.Theme
	m    measure.Measurer
	tree *sequence.Tree

	state    State
	d        derived
	measured bool // SetMeasurer latch
}

// Option configures [New].
type Option func(*config)

type config struct {
	id       string
	theme    *theme.Theme
	preset   string
	measurer measure.Measurer
	width    float64
	height   float64
}

// WithID fixes the instance identifier instead of generating one.
// Shells use it to rehydrate persisted plots under their original ids.
func WithID(id string) Option {
	return func(c *config) { c.id = id }
}

// WithTheme injects a fully resolved theme record, bypassing preset and
// overlay resolution. Partial records fail with a typed INVALID_THEME
// error.
func WithTheme(th *theme.Theme) Option {
	return func(c *config) { c.theme = th }
}

// WithThemeName resolves the spec's theme overlay against the named
// preset instead of the default base.
func WithThemeName(name string) Option {
	return func(c *config) { c.preset = name }
}

// WithMeasurer sets the initial text measurer. Without it the theme
// font is loaded when configured, falling back to the estimator.
func WithMeasurer(m measure.Measurer) Option {
	return func(c *config) { c.measurer = m }
}

// WithSize sets the initial viewport size. Zero keeps the natural size.
func WithSize(w, h float64) Option {
	return func(c *config) { c.width, c.height = w, h }
}

// New validates the spec and builds a plot handle in its initial state:
// spec-order rows, spec collapse defaults, no filter.
func New(spec *forest.Spec, opts ...Option) (*Plot, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if spec == nil {
		return nil, errors.New(errors.ErrCodeMissingField, "missing required field: spec")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	th, err := resolveTheme(spec, cfg)
	if err != nil {
		return nil, err
	}
	tree, err := sequence.Build(&spec.Data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGroup, err, "resolve display sequence")
	}

	id := cfg.id
	if id == "" {
		id = uuid.NewString()
	}
	p := &Plot{
		id:    id,
		spec:  spec,
		th:    th,
		m:     resolveMeasurer(&th, cfg),
		tree:  tree,
		state: State{Width: cfg.width, Height: cfg.height},
	}
	p.recompute()
	return p, nil
}

func resolveTheme(spec *forest.Spec, cfg config) (theme.Theme, error) {
	if cfg.theme != nil {
		if err := cfg.theme.Complete(); err != nil {
			return theme.Theme{}, err
		}
		return *cfg.theme, nil
	}
	overlay := spec.Theme
	if cfg.preset != "" {
		o := theme.Spec{Preset: cfg.preset}
		if overlay != nil {
			o = *overlay
			o.Preset = cfg.preset
		}
		overlay = &o
	}
	return theme.Resolve(overlay)
}

// resolveMeasurer loads the theme font for exact metrics, degrading to
// nil (the layout default estimator) when absent or unreadable.
func resolveMeasurer(th *theme.Theme, cfg config) measure.Measurer {
	if cfg.measurer != nil {
		return cfg.measurer
	}
	if th.Typography.FontFile == "" {
		return nil
	}
	face, err := measure.LoadFace(th.Typography.FontFile)
	if err != nil {
		return nil
	}
	return face
}

// recompute re-resolves the display sequence and rebuilds the layout
// from the current state. Every mutation funnels through here, so the
// derived geometry never lags the state.
func (p *Plot) recompute() {
	entries := p.tree.Resolve(sequence.Options{
		Collapsed: p.state.Collapsed,
		SortField: p.state.SortField,
		SortDesc:  p.state.SortDesc,
		Filter:    p.state.Filter,
	})

	var opts []layout.Option
	if p.m != nil {
		opts = append(opts, layout.WithMeasurer(p.m))
	}
	if len(p.state.ColumnWidths) > 0 {
		opts = append(opts, layout.WithColumnWidths(p.state.ColumnWidths))
	}
	if p.state.Width > 0 {
		opts = append(opts, layout.WithTargetWidth(p.state.Width))
	}

	p.d = derived{
		entries: entries,
		layout:  layout.Build(p.spec, &p.th, entries, opts...),
	}
}

// =============================================================================
// Accessors
// =============================================================================

// ID returns the instance identifier assigned at construction.
func (p *Plot) ID() string { return p.id }

// Spec returns the underlying spec. Callers must not mutate it.
func (p *Plot) Spec() *forest.Spec { return p.spec }

// Theme returns the resolved theme in effect.
func (p *Plot) Theme() theme.Theme { return p.th }

// Layout returns the current geometry. Valid until the next mutation;
// callers must not mutate it.
func (p *Plot) Layout() *layout.Layout { return p.d.layout }

// Sequence returns the current display sequence.
func (p *Plot) Sequence() []sequence.Entry { return p.d.entries }

// Scale maps axis domain values onto the current plot region and back.
func (p *Plot) Scale() *scale.Scale { return p.d.layout.Scale() }

// SVG renders the current state through the shared SVG sink.
func (p *Plot) SVG() []byte {
	opts := []sink.SVGOption{sink.WithSize(p.state.Width, p.state.Height)}
	if p.m != nil {
		opts = append(opts, sink.WithMeasurer(p.m))
	}
	return sink.RenderLayout(p.d.layout, p.spec, &p.th, opts...)
}

// LayoutJSON emits the current geometry as the versioned layout record.
func (p *Plot) LayoutJSON() ([]byte, error) {
	return sink.LayoutJSON(p.d.layout, p.spec)
}

// State returns a snapshot of the current view state. The maps are
// copies; mutating them does not affect the plot.
func (p *Plot) State() State {
	s := p.state
	s.Collapsed = copyBoolMap(p.state.Collapsed)
	s.ColumnWidths = copyFloatMap(p.state.ColumnWidths)
	return s
}

// Interaction returns the effective mutation gates from the spec.
func (p *Plot) Interaction() forest.Interaction {
	return p.spec.Interactions()
}

// =============================================================================
// Mutations
// =============================================================================

// ToggleGroup flips the collapse state of one group and reports whether
// the toggle applied. Unknown groups, and specs with collapse disabled,
// leave the plot unchanged.
func (p *Plot) ToggleGroup(id string) bool {
	if !p.Interaction().Collapse {
		return false
	}
	g, ok := p.tree.Group(id)
	if !ok {
		return false
	}

	cur := g.Collapsed
	if v, ok := p.state.Collapsed[id]; ok {
		cur = v
	}
	if p.state.Collapsed == nil {
		p.state.Collapsed = make(map[string]bool)
	}
	p.state.Collapsed[id] = !cur
	p.recompute()
	return true
}

// SetSort reorders data rows within their group buckets. An empty field
// restores spec order. No-op when the spec disables sorting.
func (p *Plot) SetSort(field string, desc bool) {
	if !p.Interaction().Sort {
		return
	}
	p.state.SortField = field
	p.state.SortDesc = desc
	p.recompute()
}

// SetFilter hides data rows the predicate rejects; nil shows every row.
// Filtering shares the sort gate: both reshape the visible row set.
func (p *Plot) SetFilter(f func(*forest.Row) bool) {
	if !p.Interaction().Sort {
		return
	}
	p.state.Filter = f
	p.recompute()
}

// SetColumnWidth overrides one column's width in pixels, keyed by
// column key. Zero or negative restores automatic sizing. No-op when
// the spec disables resizing.
func (p *Plot) SetColumnWidth(key string, width float64) {
	if !p.Interaction().Resize {
		return
	}
	if width > 0 {
		if p.state.ColumnWidths == nil {
			p.state.ColumnWidths = make(map[string]float64)
		}
		p.state.ColumnWidths[key] = width
	} else {
		delete(p.state.ColumnWidths, key)
	}
	p.recompute()
}

// SetTheme replaces the resolved theme. Partial records fail with a
// typed INVALID_THEME error and leave the plot unchanged.
func (p *Plot) SetTheme(th theme.Theme) error {
	if err := th.Complete(); err != nil {
		return err
	}
	p.th = th
	p.recompute()
	return nil
}

// Resize sets the viewport size. Zero keeps the natural size; negative
// values are treated as zero.
func (p *Plot) Resize(width, height float64) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	p.state.Width = width
	p.state.Height = height
	p.recompute()
}

// SetMeasurer installs the exact text measurer once fonts are ready and
// re-measures the layout. One-shot: the first call wins and further
// calls are ignored, so shells may wire it to repeated font events.
func (p *Plot) SetMeasurer(m measure.Measurer) {
	if p.measured || m == nil {
		return
	}
	p.measured = true
	p.m = m
	p.recompute()
}

func copyBoolMap(src map[string]bool) map[string]bool {
	if src == nil {
		return nil
	}
	dst := make(map[string]bool, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyFloatMap(src map[string]float64) map[string]float64 {
	if src == nil {
		return nil
	}
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
