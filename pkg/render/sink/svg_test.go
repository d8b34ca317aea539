package sink

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
)

func floatPtr(v float64) *float64 { return &v }

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func flatSpec() *forest.Spec {
	return &forest.Spec{
		Data: forest.Data{
			Rows: []forest.Row{
				{ID: "a", Label: "Alpha", Point: floatPtr(0.8), Lower: floatPtr(0.6), Upper: floatPtr(1.1)},
				{ID: "b", Label: "Beta", Point: floatPtr(1.4), Lower: floatPtr(1.0), Upper: floatPtr(2.0)},
			},
		},
	}
}

func groupedSpec() *forest.Spec {
	spec := flatSpec()
	spec.Data.Groups = []forest.Group{{ID: "g", Label: "First Line"}}
	for i := range spec.Data.Rows {
		spec.Data.Rows[i].Group = "g"
	}
	return spec
}

func mustRender(t *testing.T, spec *forest.Spec, opts ...SVGOption) string {
	t.Helper()
	out, err := RenderSVG(spec, opts...)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	return string(out)
}

func TestRenderSVGDocument(t *testing.T) {
	svg := mustRender(t, flatSpec())

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Fatalf("unexpected document start: %.80s", svg)
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("document not terminated")
	}
	for _, want := range []string{
		"Alpha",
		"Beta",
		"Study",
		"Estimate (95% CI)",
		"0.80 (0.60, 1.10)", // interval cell
		`fill="#ffffff"`,    // background
		`stroke="#9aa3b2"`,  // null line
		`stroke="#4a5568"`,  // whisker
		`fill="#2f6f8f"`,    // marker
		`stroke="#e3e6ec"`,  // gridlines on by default
		`fill="#f5f6f8"`,    // parity band on the second data row
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderSVGErrors(t *testing.T) {
	t.Run("nil spec", func(t *testing.T) {
		_, err := RenderSVG(nil)
		if !errors.Is(err, errors.ErrCodeMissingField) {
			t.Fatalf("code = %v, want MISSING_FIELD", errors.GetCode(err))
		}
	})

	t.Run("missing rows", func(t *testing.T) {
		_, err := RenderSVG(&forest.Spec{})
		if !errors.Is(err, errors.ErrCodeMissingField) {
			t.Fatalf("code = %v, want MISSING_FIELD", errors.GetCode(err))
		}
		if !strings.Contains(err.Error(), "data.rows") {
			t.Errorf("error should name data.rows: %v", err)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		spec := flatSpec()
		spec.Data.Rows[0].Group = "missing"
		_, err := RenderSVG(spec)
		if !errors.Is(err, errors.ErrCodeInvalidGroup) {
			t.Fatalf("code = %v, want INVALID_GROUP", errors.GetCode(err))
		}
	})

	t.Run("partial injected theme", func(t *testing.T) {
		_, err := RenderSVG(flatSpec(), WithTheme(&theme.Theme{}))
		if !errors.Is(err, errors.ErrCodeInvalidTheme) {
			t.Fatalf("code = %v, want INVALID_THEME", errors.GetCode(err))
		}
		if !strings.Contains(err.Error(), "theme.colors") {
			t.Errorf("error should name the missing section: %v", err)
		}
	})
}

func TestWithSize(t *testing.T) {
	svg := mustRender(t, flatSpec(), WithSize(1000, 640))
	if !strings.Contains(svg, `width="1000" height="640"`) {
		t.Errorf("size attributes not applied")
	}
}

func TestWithBackground(t *testing.T) {
	svg := mustRender(t, flatSpec(), WithBackground("#101418"))
	if !strings.Contains(svg, `fill="#101418"`) {
		t.Errorf("background override not applied")
	}
	if strings.Contains(svg, `fill="#ffffff"`) {
		t.Errorf("theme background still present after override")
	}
}

func TestWithThemeInjected(t *testing.T) {
	th := theme.Default()
	svg := mustRender(t, flatSpec(), WithTheme(&th))
	if !strings.Contains(svg, `fill="#ffffff"`) {
		t.Errorf("injected theme not used")
	}
}

func TestWithThemeName(t *testing.T) {
	dark, err := theme.Named("dark")
	if err != nil {
		t.Fatalf("theme.Named(dark) error: %v", err)
	}
	svg := mustRender(t, flatSpec(), WithThemeName("dark"))
	if !strings.Contains(svg, `height="100%" fill="`+dark.Colors.Background+`"`) {
		t.Errorf("dark preset background missing")
	}
	if strings.Contains(svg, `height="100%" fill="#ffffff"`) {
		t.Errorf("default background still present under dark preset")
	}
}

// A layout rendered through RenderLayout must produce the same bytes
// as a direct RenderSVG of the spec it came from.
func TestRenderLayoutParity(t *testing.T) {
	spec := groupedSpec()
	r := newSVGRenderer()
	l, th, err := r.compose(spec)
	if err != nil {
		t.Fatalf("compose() error: %v", err)
	}
	direct := mustRender(t, spec)
	viaLayout := string(RenderLayout(l, spec, &th))
	if direct != viaLayout {
		t.Fatal("RenderLayout output diverges from RenderSVG")
	}
}

func TestTextEscaping(t *testing.T) {
	spec := flatSpec()
	spec.Data.Rows[0].Label = `A<B & "C"`
	svg := mustRender(t, spec)
	if strings.Contains(svg, `A<B`) {
		t.Error("label not escaped")
	}
	if !strings.Contains(svg, "A&lt;B &amp; &#34;C&#34;") {
		t.Error("escaped label missing")
	}
}

func TestEffectSpacing(t *testing.T) {
	th := theme.Default()
	if got := effectSpacing(&th, 1); got != 0 {
		t.Errorf("effectSpacing(1) = %v, want 0", got)
	}
	// Two markers fit at the natural spacing.
	if got := effectSpacing(&th, 2); !approx(got, th.Shapes.PointSize+2) {
		t.Errorf("effectSpacing(2) = %v, want %v", got, th.Shapes.PointSize+2)
	}
	// Three markers tighten to stay inside the row.
	lim := (th.Spacing.RowHeight - th.Shapes.PointSize) / 2
	if got := effectSpacing(&th, 3); !approx(got, lim) {
		t.Errorf("effectSpacing(3) = %v, want %v", got, lim)
	}
}

func TestMultiEffectMarkers(t *testing.T) {
	spec := flatSpec()
	spec.Data.Effects = []forest.Effect{
		{ID: "base", Label: "Baseline", Field: "b", Lower: "b_lo", Upper: "b_hi", Color: "#aa1100"},
		{ID: "adj", Label: "Adjusted", Field: "a", Lower: "a_lo", Upper: "a_hi", Color: "#0011aa"},
	}
	for i := range spec.Data.Rows {
		spec.Data.Rows[i].Meta = map[string]any{
			"b": 0.9, "b_lo": 0.7, "b_hi": 1.2,
			"a": 1.1, "a_lo": 0.9, "a_hi": 1.4,
		}
	}
	svg := mustRender(t, spec)
	for _, want := range []string{
		`stroke="#aa1100"`, `fill="#aa1100"`,
		`stroke="#0011aa"`, `fill="#0011aa"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
