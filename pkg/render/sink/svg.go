package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
	"github.com/matzehuels/forestplot/pkg/plot/layout"
	"github.com/matzehuels/forestplot/pkg/plot/measure"
	"github.com/matzehuels/forestplot/pkg/plot/scale"
	"github.com/matzehuels/forestplot/pkg/plot/sequence"
	"github.com/matzehuels/forestplot/pkg/plot/styles"
)

// lineHeight matches the line box factor the layout engine uses for
// title and note bands.
const lineHeight = 1.5

// baselineShift approximates vertical text centering: SVG anchors text
// at the baseline, so centered text draws at the band center plus
// roughly a third of the font size.
const baselineShift = 0.35

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width      float64
	height     float64
	background string
	theme      *theme.Theme
	preset     string
	measurer   measure.Measurer
}

// WithSize sets the rendered document size in pixels. A positive width
// also becomes the auto-fit target when the spec enables it; the
// viewBox keeps the computed layout geometry either way. Zero keeps
// the natural size.
func WithSize(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// WithBackground overrides the theme background color.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithTheme injects a fully resolved theme record, bypassing preset
// and overlay resolution. Injected themes must carry their colors,
// typography, and spacing sections; partial records fail with a typed
// INVALID_THEME error.
func WithTheme(th *theme.Theme) SVGOption {
	return func(r *svgRenderer) { r.theme = th }
}

// WithThemeName resolves the spec's theme overlay against the named
// preset instead of the default base.
func WithThemeName(name string) SVGOption {
	return func(r *svgRenderer) { r.preset = name }
}

// WithMeasurer overrides the text measurer used for column auto-widths
// and badge placement.
func WithMeasurer(m measure.Measurer) SVGOption {
	return func(r *svgRenderer) { r.measurer = m }
}

// RenderSVG renders a plot spec as one self-contained SVG document:
// explicit width, height, and viewBox, all text escaped, no external
// references. Structural problems (missing data.rows, a partial
// injected theme) fail fast with typed errors; numeric degeneracy
// never fails, it degrades the way the axis and layout packages
// document.
func RenderSVG(spec *forest.Spec, opts ...SVGOption) ([]byte, error) {
	r := newSVGRenderer(opts...)
	l, th, err := r.compose(spec)
	if err != nil {
		return nil, err
	}
	return r.draw(l, spec, &th), nil
}

// RenderLayout draws an already composed layout. The interactive plot
// handle exports through this entry point so a live view and a static
// render of the same state produce identical bytes. Sizing and theme
// options are layout inputs and have no effect here.
func RenderLayout(l *layout.Layout, spec *forest.Spec, th *theme.Theme, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	return r.draw(l, spec, th)
}

// Compose validates the spec, resolves the theme, and builds the
// layout the draw pass renders from. Callers that time or cache the
// stages separately compose once, then hand the result to
// RenderLayout or LayoutJSON.
func Compose(spec *forest.Spec, opts ...SVGOption) (*layout.Layout, theme.Theme, error) {
	r := newSVGRenderer(opts...)
	return r.compose(spec)
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// compose validates the spec, resolves the theme, and builds the
// layout. RenderJSON shares it, so the SVG and JSON sinks always
// describe the same geometry.
func (r *svgRenderer) compose(spec *forest.Spec) (*layout.Layout, theme.Theme, error) {
	if spec == nil {
		return nil, theme.Theme{}, errors.New(errors.ErrCodeMissingField, "missing required field: spec")
	}
	if err := spec.Validate(); err != nil {
		return nil, theme.Theme{}, err
	}
	th, err := r.resolveTheme(spec)
	if err != nil {
		return nil, theme.Theme{}, err
	}

	tree, err := sequence.Build(&spec.Data)
	if err != nil {
		return nil, theme.Theme{}, errors.Wrap(errors.ErrCodeInvalidGroup, err, "resolve display sequence")
	}
	entries := tree.Resolve(sequence.Options{})

	l := layout.Build(spec, &th, entries, r.layoutOptions(&th)...)
	return l, th, nil
}

// resolveTheme picks the theme for one render. An injected record skips
// resolution, so an incomplete one has to fail here instead of
// rendering invisible text on a zero-height grid.
func (r *svgRenderer) resolveTheme(spec *forest.Spec) (theme.Theme, error) {
	if r.theme != nil {
		if err := r.theme.Complete(); err != nil {
			return theme.Theme{}, err
		}
		return *r.theme, nil
	}
	overlay := spec.Theme
	if r.preset != "" {
		o := theme.Spec{Preset: r.preset}
		if overlay != nil {
			o = *overlay
			o.Preset = r.preset
		}
		overlay = &o
	}
	return theme.Resolve(overlay)
}

func (r *svgRenderer) layoutOptions(th *theme.Theme) []layout.Option {
	var opts []layout.Option
	if m := r.resolveMeasurer(th); m != nil {
		opts = append(opts, layout.WithMeasurer(m))
	}
	if r.width > 0 {
		opts = append(opts, layout.WithTargetWidth(r.width))
	}
	return opts
}

// resolveMeasurer loads the theme font for exact metrics, degrading to
// the character-class estimator when the file is absent or unreadable.
func (r *svgRenderer) resolveMeasurer(th *theme.Theme) measure.Measurer {
	if r.measurer != nil {
		return r.measurer
	}
	if th.Typography.FontFile == "" {
		return nil
	}
	face, err := measure.LoadFace(th.Typography.FontFile)
	if err != nil {
		return nil
	}
	r.measurer = face
	return face
}

func (r *svgRenderer) draw(l *layout.Layout, spec *forest.Spec, th *theme.Theme) []byte {
	d := newDrawing(l, spec, th, r.measurer)

	width, height := l.Width, l.Height
	if r.width > 0 {
		width = r.width
	}
	if r.height > 0 {
		height = r.height
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		l.Width, l.Height, width, height, styles.EscapeXML(th.Typography.Family))

	d.background(&buf, r.background)
	d.bands(&buf)
	d.plotBackdrop(&buf)
	d.titles(&buf)
	d.headers(&buf)
	d.rows(&buf)
	d.axis(&buf)
	d.notes(&buf)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// drawing carries the per-render state every pass consults.
type drawing struct {
	l    *layout.Layout
	spec *forest.Spec
	th   *theme.Theme
	px   *scale.Scale
	m    measure.Measurer

	effects []forest.Effect
	offsets []float64

	// labelCell is the column slot group headers and row labels draw
	// into; nil when the spec defines no label column.
	labelCell *layout.Cell

	maxWeight float64
	colHi     map[*forest.Column]float64
	colLo     map[*forest.Column]float64
}

func newDrawing(l *layout.Layout, spec *forest.Spec, th *theme.Theme, m measure.Measurer) *drawing {
	if m == nil {
		m = measure.Estimator{}
	}
	d := &drawing{
		l:       l,
		spec:    spec,
		th:      th,
		px:      l.Scale(),
		m:       m,
		effects: spec.EffectList(),
		colHi:   map[*forest.Column]float64{},
		colLo:   map[*forest.Column]float64{},
	}
	d.offsets = layout.EffectOffsets(len(d.effects), effectSpacing(th, len(d.effects)))
	for i := range l.Columns {
		if isLabelColumn(l.Columns[i].Column) {
			d.labelCell = &l.Columns[i]
			break
		}
	}
	d.maxWeight = maxWeight(&spec.Data)
	return d
}

// effectSpacing is the vertical distance between stacked effect
// markers, tightened when needed so the stack stays inside one row.
func effectSpacing(th *theme.Theme, n int) float64 {
	if n <= 1 {
		return 0
	}
	s := th.Shapes.PointSize + 2
	if lim := (th.Spacing.RowHeight - th.Shapes.PointSize) / float64(n-1); lim < s {
		s = lim
	}
	return s
}

func maxWeight(data *forest.Data) float64 {
	if data.WeightField == "" {
		return 0
	}
	max := 0.0
	for i := range data.Rows {
		if w := forest.MetaFloat(data.Rows[i].Meta, data.WeightField); isFinite(w) && w > max {
			max = w
		}
	}
	return max
}

func isLabelColumn(c *forest.Column) bool {
	return c.Field == forest.FieldLabel && c.EffectiveType() == forest.ColumnText
}

func (d *drawing) background(buf *bytes.Buffer, override string) {
	color := d.th.Colors.Background
	if override != "" {
		color = override
	}
	if color == "" {
		return
	}
	fmt.Fprintf(buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", color)
}

func (d *drawing) titles(buf *bytes.Buffer) {
	if d.l.Title.Height <= 0 {
		return
	}
	th := d.th
	x := th.Spacing.Margin
	y := d.l.Title.Y
	if t := d.spec.Labels.Title; t != "" {
		line := th.Typography.TitleSize * lineHeight
		d.text(buf, x, baseline(y+line/2, th.Typography.TitleSize), t, textStyle{
			size: th.Typography.TitleSize, fill: th.Colors.Text, bold: true,
		})
		y += line
	}
	if sub := d.spec.Labels.Subtitle; sub != "" {
		line := th.Typography.HeaderSize * lineHeight
		d.text(buf, x, baseline(y+line/2, th.Typography.HeaderSize), sub, textStyle{
			size: th.Typography.HeaderSize, fill: th.Colors.CI,
		})
	}
}

func (d *drawing) notes(buf *bytes.Buffer) {
	if d.l.Notes.Height <= 0 {
		return
	}
	th := d.th
	x := th.Spacing.Margin
	y := d.l.Notes.Y
	line := th.Typography.BaseSize * lineHeight
	if c := d.spec.Labels.Caption; c != "" {
		d.text(buf, x, baseline(y+line/2, th.Typography.BaseSize), c, textStyle{
			size: th.Typography.BaseSize, fill: th.Colors.CI,
		})
		y += line
	}
	if f := d.spec.Labels.Footnote; f != "" {
		d.text(buf, x, baseline(y+line/2, th.Typography.BaseSize), f, textStyle{
			size: th.Typography.BaseSize, fill: th.Colors.CI, italic: true,
		})
	}
}

type textStyle struct {
	size   float64
	fill   string
	anchor string // SVG text-anchor; "" draws start-anchored
	bold   bool
	italic bool
}

func (d *drawing) text(buf *bytes.Buffer, x, y float64, s string, st textStyle) {
	if s == "" {
		return
	}
	var attrs bytes.Buffer
	if st.anchor != "" && st.anchor != "start" {
		fmt.Fprintf(&attrs, ` text-anchor="%s"`, st.anchor)
	}
	if st.bold {
		attrs.WriteString(` font-weight="bold"`)
	}
	if st.italic {
		attrs.WriteString(` font-style="italic"`)
	}
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" fill="%s"%s>%s</text>`+"\n",
		x, y, st.size, st.fill, attrs.String(), styles.EscapeXML(s))
}

// baseline converts a vertical center into a text baseline.
func baseline(centerY, size float64) float64 {
	return centerY + size*baselineShift
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
