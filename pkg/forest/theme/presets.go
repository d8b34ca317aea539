package theme

import (
	"sort"

	"github.com/matzehuels/forestplot/pkg/errors"
)

// Preset names.
const (
	PresetDefault = "default"
	PresetJournal = "journal"
	PresetDark    = "dark"
)

func boolPtr(v bool) *bool { return &v }

// Default returns the standard light theme.
func Default() Theme {
	return Theme{
		Name: PresetDefault,
		Colors: Colors{
			Background:      "#ffffff",
			Text:            "#1f2430",
			HeaderText:      "#1f2430",
			Band:            "#f5f6f8",
			GroupTints:      []string{"#eef1f6", "#f4f6fa", "#f9fafc"},
			MarkerPalette:   []string{"#2f6f8f", "#c24d2c", "#4a7c59", "#7d5ba6"},
			CI:              "#4a5568",
			NullLine:        "#9aa3b2",
			Gridline:        "#e3e6ec",
			BadgeBackground: "#e8edf5",
			BadgeText:       "#33415c",
			SummaryFill:     "#2f6f8f",
		},
		Typography: Typography{
			Family:     "Helvetica, Arial, sans-serif",
			BaseSize:   12,
			HeaderSize: 12,
			TitleSize:  16,
			BadgeScale: 0.85,
		},
		Spacing: Spacing{
			RowHeight:      26,
			SpacerFraction: 0.5,
			CellPadding:    8,
			ColumnGap:      12,
			HeaderPadding:  10,
			AxisGap:        8,
			Margin:         16,
			Indent:         14,
			MinColumnWidth: 36,
			MaxColumnWidth: 360,
		},
		Shapes: Shapes{
			PointSize:     9,
			LineWidth:     1.5,
			ArrowSize:     5,
			DiamondHeight: 0.55,
		},
		Axis: Axis{
			Ticks:     6,
			Gridlines: boolPtr(true),
		},
		GroupHeader: GroupHeader{
			ChevronSize: 8,
			ShowCount:   boolPtr(true),
		},
		Banding: BandingAuto,
	}
}

// journal is a print-oriented preset: serif text, black markers, no
// row bands.
func journal() Theme {
	t := Default()
	t.Name = PresetJournal
	t.Colors.Text = "#000000"
	t.Colors.HeaderText = "#000000"
	t.Colors.Band = "#ffffff"
	t.Colors.GroupTints = []string{"#f2f2f2", "#f7f7f7", "#fbfbfb"}
	t.Colors.MarkerPalette = []string{"#000000", "#444444", "#777777", "#aaaaaa"}
	t.Colors.CI = "#000000"
	t.Colors.NullLine = "#666666"
	t.Colors.Gridline = "#dddddd"
	t.Colors.SummaryFill = "#000000"
	t.Typography.Family = "Georgia, 'Times New Roman', serif"
	t.Shapes.LineWidth = 1.2
	t.Banding = BandingNone
	return t
}

// dark is an inverted preset for dark UI embeddings.
func dark() Theme {
	t := Default()
	t.Name = PresetDark
	t.Colors.Background = "#14161c"
	t.Colors.Text = "#e6e9f0"
	t.Colors.HeaderText = "#ffffff"
	t.Colors.Band = "#1c1f27"
	t.Colors.GroupTints = []string{"#232733", "#1e222c", "#1a1d26"}
	t.Colors.MarkerPalette = []string{"#6db3d4", "#e98a6a", "#84b894", "#ab8fd0"}
	t.Colors.CI = "#aab3c5"
	t.Colors.NullLine = "#5b6475"
	t.Colors.Gridline = "#2a2f3b"
	t.Colors.BadgeBackground = "#2d3444"
	t.Colors.BadgeText = "#c7d1e6"
	t.Colors.SummaryFill = "#6db3d4"
	return t
}

// presets maps preset names to their constructors.
var presets = map[string]func() Theme{
	PresetDefault: Default,
	PresetJournal: journal,
	PresetDark:    dark,
}

// Named returns the preset theme with the given name.
func Named(name string) (Theme, error) {
	ctor, ok := presets[name]
	if !ok {
		return Theme{}, errors.New(errors.ErrCodeInvalidTheme, "unknown theme preset: %q", name)
	}
	return ctor(), nil
}

// List returns the available preset names, sorted.
func List() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
