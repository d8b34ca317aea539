package styles

import (
	"strings"
	"testing"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
)

func floatPtr(v float64) *float64 { return &v }

func testTheme() *theme.Theme {
	return &theme.Theme{
		Colors: theme.Colors{
			Band:          "#f5f5f5",
			GroupTints:    []string{"#eef2ff", "#e0e7ff"},
			MarkerPalette: []string{"#1f77b4", "#ff7f0e"},
			CI:            "#333333",
		},
		Shapes: theme.Shapes{
			PointSize: 10,
			MarkerStyles: []theme.MarkerStyle{
				{Shape: theme.ShapeCircle, Color: "#0b5fa5", Opacity: 0.9},
			},
		},
	}
}

func TestResolveMarkerDefaults(t *testing.T) {
	th := &theme.Theme{
		Colors: theme.Colors{MarkerPalette: []string{"#111111", "#222222"}},
		Shapes: theme.Shapes{PointSize: 8},
	}

	wantShapes := []string{
		theme.ShapeSquare, theme.ShapeCircle, theme.ShapeDiamond,
		theme.ShapeTriangle, theme.ShapeSquare,
	}
	for i, want := range wantShapes {
		m := ResolveMarker(nil, nil, i, th)
		if m.Shape != want {
			t.Errorf("ResolveMarker(index %d).Shape = %q, want %q", i, m.Shape, want)
		}
	}

	m := ResolveMarker(nil, nil, 2, th)
	if m.Color != "#111111" {
		t.Errorf("palette should cycle: Color = %q, want #111111", m.Color)
	}
	if m.Opacity != 1 || m.Size != 8 {
		t.Errorf("defaults = opacity %v size %v, want 1 and 8", m.Opacity, m.Size)
	}
}

func TestResolveMarkerPrecedence(t *testing.T) {
	th := testTheme()

	t.Run("theme style beats cycle", func(t *testing.T) {
		m := ResolveMarker(nil, nil, 0, th)
		if m.Shape != theme.ShapeCircle || m.Color != "#0b5fa5" || m.Opacity != 0.9 {
			t.Errorf("ResolveMarker() = %+v, want theme marker style applied", m)
		}
	})

	t.Run("effect beats theme style", func(t *testing.T) {
		e := &forest.Effect{Shape: theme.ShapeTriangle, Color: "#008000"}
		m := ResolveMarker(nil, e, 0, th)
		if m.Shape != theme.ShapeTriangle || m.Color != "#008000" {
			t.Errorf("ResolveMarker() = %+v, want effect style applied", m)
		}
		// The effect sets no opacity, so the theme's survives.
		if m.Opacity != 0.9 {
			t.Errorf("Opacity = %v, want 0.9 kept from theme", m.Opacity)
		}
	})

	t.Run("row override beats effect on primary", func(t *testing.T) {
		row := &forest.Row{Marker: &forest.MarkerOverride{
			Color:   "#d62728",
			Opacity: floatPtr(0.4),
			Size:    floatPtr(14),
		}}
		e := &forest.Effect{Shape: theme.ShapeTriangle, Color: "#008000"}
		m := ResolveMarker(row, e, 0, th)
		if m.Color != "#d62728" || m.Opacity != 0.4 || m.Size != 14 {
			t.Errorf("ResolveMarker() = %+v, want row override applied", m)
		}
		if m.Shape != theme.ShapeTriangle {
			t.Errorf("Shape = %q, want effect shape kept when override sets none", m.Shape)
		}
	})

	t.Run("row override ignored on secondary effects", func(t *testing.T) {
		row := &forest.Row{Marker: &forest.MarkerOverride{Color: "#d62728"}}
		m := ResolveMarker(row, nil, 1, th)
		if m.Color == "#d62728" {
			t.Error("row override must not restyle secondary effects")
		}
		if m.Color != "#ff7f0e" {
			t.Errorf("Color = %q, want palette #ff7f0e", m.Color)
		}
	})
}

func TestMode(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		hasGroups bool
		want      string
	}{
		{name: "auto with groups", mode: theme.BandingAuto, hasGroups: true, want: theme.BandingDepth},
		{name: "auto without groups", mode: theme.BandingAuto, hasGroups: false, want: theme.BandingParity},
		{name: "empty acts as auto", mode: "", hasGroups: true, want: theme.BandingDepth},
		{name: "explicit parity with groups", mode: theme.BandingParity, hasGroups: true, want: theme.BandingParity},
		{name: "explicit depth without groups", mode: theme.BandingDepth, hasGroups: false, want: theme.BandingDepth},
		{name: "none stays none", mode: theme.BandingNone, hasGroups: true, want: theme.BandingNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mode(tt.mode, tt.hasGroups); got != tt.want {
				t.Errorf("Mode(%q, %v) = %q, want %q", tt.mode, tt.hasGroups, got, tt.want)
			}
		})
	}
}

func TestRowBand(t *testing.T) {
	th := testTheme()

	tests := []struct {
		name      string
		mode      string
		dataIndex int
		depth     int
		want      string
	}{
		{name: "parity even", mode: theme.BandingParity, dataIndex: 0, want: ""},
		{name: "parity odd", mode: theme.BandingParity, dataIndex: 1, want: "#f5f5f5"},
		{name: "depth zero unbanded", mode: theme.BandingDepth, depth: 0, want: ""},
		{name: "depth one", mode: theme.BandingDepth, depth: 1, want: "#eef2ff"},
		{name: "depth two", mode: theme.BandingDepth, depth: 2, want: "#e0e7ff"},
		{name: "depth cycles", mode: theme.BandingDepth, depth: 3, want: "#eef2ff"},
		{name: "none", mode: theme.BandingNone, dataIndex: 1, depth: 2, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RowBand(tt.mode, tt.dataIndex, tt.depth, th); got != tt.want {
				t.Errorf("RowBand(%q, %d, %d) = %q, want %q",
					tt.mode, tt.dataIndex, tt.depth, got, tt.want)
			}
		})
	}
}

func TestHeaderTint(t *testing.T) {
	th := testTheme()
	if got := HeaderTint(0, th); got != "#eef2ff" {
		t.Errorf("HeaderTint(0) = %q, want #eef2ff", got)
	}
	if got := HeaderTint(1, th); got != "#e0e7ff" {
		t.Errorf("HeaderTint(1) = %q, want #e0e7ff", got)
	}
	if got := HeaderTint(0, &theme.Theme{}); got != "" {
		t.Errorf("HeaderTint without tints = %q, want empty", got)
	}
}

func TestShapePath(t *testing.T) {
	tests := []struct {
		shape    string
		contains string
	}{
		{shape: theme.ShapeSquare, contains: "H"},
		{shape: theme.ShapeCircle, contains: "A"},
		{shape: theme.ShapeDiamond, contains: "L"},
		{shape: theme.ShapeTriangle, contains: "L"},
		{shape: "hexagon", contains: "H"}, // unknown falls back to square
	}

	for _, tt := range tests {
		t.Run(tt.shape, func(t *testing.T) {
			path := ShapePath(tt.shape, 100, 50, 10)
			if !strings.HasPrefix(path, "M") {
				t.Errorf("ShapePath(%q) should start with M, got %s", tt.shape, path)
			}
			if !strings.HasSuffix(path, "Z") {
				t.Errorf("ShapePath(%q) should end with Z, got %s", tt.shape, path)
			}
			if !strings.Contains(path, tt.contains) {
				t.Errorf("ShapePath(%q) should contain %q, got %s", tt.shape, tt.contains, path)
			}
		})
	}
}

func TestShapePathSquareCorners(t *testing.T) {
	got := ShapePath(theme.ShapeSquare, 100, 50, 10)
	want := "M95.0 45.0H105.0V55.0H95.0Z"
	if got != want {
		t.Errorf("ShapePath(square) = %q, want %q", got, want)
	}
}

func TestSummaryPath(t *testing.T) {
	got := SummaryPath(80, 140, 105, 50, 12)
	want := "M80.0 50.0L105.0 44.0L140.0 50.0L105.0 56.0Z"
	if got != want {
		t.Errorf("SummaryPath() = %q, want %q", got, want)
	}
}

func TestArrowPath(t *testing.T) {
	right := ArrowPath(200, 50, 6, true)
	if !strings.HasPrefix(right, "M200.0 50.0") {
		t.Errorf("ArrowPath() tip should sit at the clip edge, got %s", right)
	}
	if !strings.Contains(right, "194.0") {
		t.Errorf("right arrow base should sit left of the tip, got %s", right)
	}

	left := ArrowPath(20, 50, 6, false)
	if !strings.Contains(left, "26.0") {
		t.Errorf("left arrow base should sit right of the tip, got %s", left)
	}
}
