package cli

import (
	"fmt"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/interactive"
	"github.com/matzehuels/forestplot/pkg/plot/format"
	"github.com/matzehuels/forestplot/pkg/plot/scale"
	"github.com/matzehuels/forestplot/pkg/plot/sequence"
)

// Viewer styles
var (
	tuiCursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorGray)
	tuiGroupStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiSummaryStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	tuiNormalStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	tuiDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	tuiStatusStyle  = lipgloss.NewStyle().Foreground(colorGreen)
)

// sortModes is the cycle the s key walks through.
var sortModes = []struct {
	field string
	desc  bool
	label string
}{
	{"", false, "spec order"},
	{"point", false, "point ↑"},
	{"point", true, "point ↓"},
	{"label", false, "label"},
}

// stripGlyphs draw the confidence interval band.
const (
	glyphLine    = '─'
	glyphLower   = '├'
	glyphUpper   = '┤'
	glyphPoint   = '●'
	glyphSummary = '◆'
	glyphNull    = '┆'
)

// =============================================================================
// PlotModel - Interactive plot viewer
// =============================================================================

// PlotModel is the bubbletea model for the terminal plot viewer. It
// renders the display sequence as a scrollable table with a character
// cell confidence interval strip, sharing collapse and sort semantics
// with the SVG renderer through the interactive plot handle.
type PlotModel struct {
	Plot  *interactive.Plot
	Input string

	entries []sequence.Entry
	columns []*forest.Column
	widths  []int
	labelW  int
	stripW  int

	cursor  int
	offset  int
	height  int
	sortIdx int
	status  string
}

// NewPlotModel creates a viewer model over an interactive plot. Input
// names the spec file; exports derive their path from it.
func NewPlotModel(p *interactive.Plot, input string) PlotModel {
	m := PlotModel{
		Plot:   p,
		Input:  input,
		height: 20,
		stripW: 32,
	}
	m.entries = p.Sequence()
	m.initColumns()
	return m
}

// initColumns picks the visible leaf columns and sizes them against
// every row in the spec, so widths stay put as groups collapse.
func (m *PlotModel) initColumns() {
	spec := m.Plot.Spec()
	cols := spec.EffectiveColumns()
	var leaves []*forest.Column
	for i := range cols {
		leaves = cols[i].Leaves(leaves)
	}

	rows := make([]*forest.Row, 0, len(spec.Data.Rows)+1)
	for i := range spec.Data.Rows {
		rows = append(rows, &spec.Data.Rows[i])
	}
	if spec.Data.Overall != nil {
		rows = append(rows, spec.Data.Overall)
	}

	m.labelW = 12
	for _, c := range leaves {
		if c.Key() == forest.FieldLabel {
			for _, r := range rows {
				if w := runewidth.StringWidth(r.Label) + 4; w > m.labelW {
					m.labelW = w
				}
			}
			continue
		}
		w := runewidth.StringWidth(format.Header(c, &spec.Data))
		for _, r := range rows {
			if cw := runewidth.StringWidth(format.Cell(r, c)); cw > w {
				w = cw
			}
		}
		if w == 0 {
			continue // purely graphical column, nothing to print
		}
		if w < 4 {
			w = 4
		}
		if w > 24 {
			w = 24
		}
		m.columns = append(m.columns, c)
		m.widths = append(m.widths, w)
	}
	if m.labelW > 40 {
		m.labelW = 40
	}
}

func (m PlotModel) Init() tea.Cmd {
	return nil
}

func (m PlotModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter", " ":
			m.toggle()
		case "s":
			m.sortIdx = (m.sortIdx + 1) % len(sortModes)
			mode := sortModes[m.sortIdx]
			m.Plot.SetSort(mode.field, mode.desc)
			m.refresh()
		case "e":
			m.export()
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 7
		if m.height < 5 {
			m.height = 5
		}
		m.stripW = msg.Width - m.labelW - m.cellsWidth() - 6
		if m.stripW < 16 {
			m.stripW = 16
		}
		if m.stripW > 48 {
			m.stripW = 48
		}
		m.clamp()
	}
	return m, nil
}

// toggle collapses or expands the group header under the cursor.
func (m *PlotModel) toggle() {
	if m.cursor >= len(m.entries) {
		return
	}
	e := m.entries[m.cursor]
	if e.Kind != sequence.EntryHeader {
		return
	}
	m.Plot.ToggleGroup(e.Group.ID)
	m.refresh()
}

// export writes the current view as SVG next to the input file.
func (m *PlotModel) export() {
	path := basePath("", m.Input) + ".svg"
	if err := os.WriteFile(path, m.Plot.SVG(), 0o644); err != nil {
		m.status = "Export failed: " + err.Error()
		return
	}
	m.status = "Exported " + path
}

// refresh re-reads the display sequence after a state change.
func (m *PlotModel) refresh() {
	m.entries = m.Plot.Sequence()
	m.clamp()
}

func (m *PlotModel) clamp() {
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *PlotModel) cellsWidth() int {
	w := 0
	for _, cw := range m.widths {
		w += cw + 2
	}
	return w
}

func (m PlotModel) View() string {
	var b strings.Builder

	title := m.Plot.Spec().Labels.Title
	if title == "" {
		title = m.Input
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render("↑/↓ navigate  ⏎ toggle group  s sort  e export  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.headerLine())
	b.WriteString("\n")

	end := m.offset + m.height
	if end > len(m.entries) {
		end = len(m.entries)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.entryLine(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footer := fmt.Sprintf("  [%d/%d]  sort: %s", m.cursor+1, len(m.entries), sortModes[m.sortIdx].label)
	b.WriteString(tuiDimStyle.Render(footer))
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(tuiStatusStyle.Render(m.status))
	}

	return b.String()
}

// headerLine renders column headers plus the axis domain over the strip.
func (m PlotModel) headerLine() string {
	spec := m.Plot.Spec()
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(tuiHeaderStyle.Render(pad("Label", m.labelW)))
	for i, c := range m.columns {
		b.WriteString("  ")
		h := format.Header(c, &spec.Data)
		b.WriteString(tuiHeaderStyle.Render(padAlign(h, m.widths[i], c.EffectiveAlign())))
	}
	b.WriteString("  ")
	b.WriteString(tuiDimStyle.Render(m.axisHeader()))
	return b.String()
}

// axisHeader labels the strip edges with the axis domain bounds.
func (m PlotModel) axisHeader() string {
	sc := m.Plot.Scale()
	if sc == nil {
		return pad("", m.stripW)
	}
	lo, hi := sc.Domain()
	left := format.Tick(lo)
	right := format.Tick(hi)
	gap := m.stripW - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// entryLine renders one display sequence entry.
func (m PlotModel) entryLine(i int) string {
	e := m.entries[i]
	cursor := "  "
	if i == m.cursor {
		cursor = "▸ "
	}

	switch e.Kind {
	case sequence.EntryHeader:
		marker := "▾"
		if e.Collapsed {
			marker = "▸"
		}
		label := fmt.Sprintf("%s%s %s", indent(e.Depth), marker, e.Group.DisplayLabel())
		count := fmt.Sprintf(" (%d %s)", e.RowCount, plural("row", e.RowCount))
		line := pad(label, m.labelW) + count
		if i == m.cursor {
			return tuiCursorStyle.Render(cursor) + tuiGroupStyle.Render(line)
		}
		return cursor + tuiGroupStyle.Render(line)
	default:
		return m.rowLine(i, cursor, e)
	}
}

// rowLine renders a table row entry with its cells and interval strip.
func (m PlotModel) rowLine(i int, cursor string, e sequence.Entry) string {
	r := e.Row
	if r.IsSpacer() {
		return cursor
	}

	style := tuiNormalStyle
	switch {
	case i == m.cursor:
		style = tuiCursorStyle
	case r.IsHeader():
		style = tuiHeaderStyle
	case r.IsSummary():
		style = tuiSummaryStyle
	}

	label := indent(e.Depth+r.Indent) + r.Label
	if r.Badge != "" {
		label += " " + r.Badge
	}
	var b strings.Builder
	b.WriteString(style.Render(pad(label, m.labelW)))

	for ci, c := range m.columns {
		b.WriteString("  ")
		cell := ""
		if !r.IsHeader() {
			cell = format.Cell(r, c)
		}
		b.WriteString(style.Render(padAlign(cell, m.widths[ci], c.EffectiveAlign())))
	}

	b.WriteString("  ")
	if r.IsHeader() {
		b.WriteString(pad("", m.stripW))
	} else {
		b.WriteString(m.strip(r))
	}

	if i == m.cursor {
		return tuiCursorStyle.Render(cursor) + b.String()
	}
	return cursor + b.String()
}

// strip draws the row's primary estimate as a character cell interval
// band, positioned with the same scale the SVG renderer uses.
func (m PlotModel) strip(r *forest.Row) string {
	sc := m.Plot.Scale()
	if sc == nil {
		return pad("", m.stripW)
	}

	cells := make([]rune, m.stripW)
	for i := range cells {
		cells[i] = ' '
	}

	null := m.Plot.Spec().Data.Null()
	if col, ok := m.stripCol(sc, null); ok {
		cells[col] = glyphNull
	}

	effects := m.Plot.Spec().EffectList()
	est := r.Estimate(&effects[0])

	if est.HasInterval() {
		lo, okLo := m.stripCol(sc, est.Lower)
		hi, okHi := m.stripCol(sc, est.Upper)
		if okLo && okHi && lo <= hi {
			for i := lo; i <= hi; i++ {
				cells[i] = glyphLine
			}
			cells[lo] = glyphLower
			cells[hi] = glyphUpper
		}
	}
	if est.HasPoint() {
		if col, ok := m.stripCol(sc, est.Point); ok {
			if r.IsSummary() {
				cells[col] = glyphSummary
			} else {
				cells[col] = glyphPoint
			}
		}
	}

	return string(cells)
}

// stripCol maps an axis value onto a strip column by normalizing its
// pixel position into the strip width.
func (m PlotModel) stripCol(sc *scale.Scale, v float64) (int, bool) {
	px := sc.ToPixel(v)
	if math.IsNaN(px) {
		return 0, false
	}
	rmin, rmax := sc.Range()
	span := rmax - rmin
	if span == 0 {
		return 0, false
	}
	frac := (px - rmin) / span
	col := int(math.Round(frac * float64(m.stripW-1)))
	if col < 0 {
		col = 0
	}
	if col > m.stripW-1 {
		col = m.stripW - 1
	}
	return col, true
}

// =============================================================================
// Helpers
// =============================================================================

func indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("  ", depth)
}

func pad(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

func padAlign(s string, w int, align string) string {
	s = runewidth.Truncate(s, w, "…")
	switch align {
	case forest.AlignRight:
		return runewidth.FillLeft(s, w)
	case forest.AlignCenter:
		left := (w - runewidth.StringWidth(s)) / 2
		if left > 0 {
			s = strings.Repeat(" ", left) + s
		}
		return runewidth.FillRight(s, w)
	default:
		return runewidth.FillRight(s, w)
	}
}

func plural(s string, n int) string {
	if n == 1 {
		return s
	}
	return s + "s"
}
