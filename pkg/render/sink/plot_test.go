package sink

import (
	"strings"
	"testing"

	"github.com/matzehuels/forestplot/pkg/forest"
)

func TestTruncationArrows(t *testing.T) {
	base := mustRender(t, flatSpec())
	if strings.Contains(base, `fill="#4a5568"`) {
		t.Fatal("baseline render already contains CI-filled paths")
	}

	spec := flatSpec()
	spec.Data.Rows = append(spec.Data.Rows, forest.Row{
		ID: "c", Label: "Gamma",
		Point: floatPtr(1.2), Lower: floatPtr(0.9), Upper: floatPtr(80),
	})
	svg := mustRender(t, spec)
	if !strings.Contains(svg, `fill="#4a5568"`) {
		t.Error("truncation arrow missing for a clipped bound")
	}
	if !strings.Contains(svg, "Gamma") {
		t.Error("clipped row missing")
	}
}

func TestAnnotations(t *testing.T) {
	spec := flatSpec()
	spec.Annotations = []forest.Annotation{
		{Value: 1, Label: "threshold", Style: forest.LineDashed},
		{Value: 1.5, Color: "#ff8800"},
	}
	svg := mustRender(t, spec)

	if !strings.Contains(svg, `stroke-dasharray="6 4"`) {
		t.Error("dashed annotation missing")
	}
	if !strings.Contains(svg, ">threshold</text>") {
		t.Error("annotation label missing")
	}
	if !strings.Contains(svg, `stroke="#ff8800"`) {
		t.Error("annotation color missing")
	}
}

func TestAxisLabel(t *testing.T) {
	spec := flatSpec()
	spec.Axis.Label = "Hazard ratio"
	svg := mustRender(t, spec)
	if !strings.Contains(svg, ">Hazard ratio</text>") {
		t.Error("axis label missing")
	}
}

func TestGridlinesDisabled(t *testing.T) {
	spec := flatSpec()
	off := false
	spec.Axis.Gridlines = &off
	svg := mustRender(t, spec)
	if strings.Contains(svg, `stroke="#e3e6ec"`) {
		t.Error("gridlines drawn while disabled")
	}
}

func TestSummaryDiamond(t *testing.T) {
	spec := flatSpec()
	spec.Data.Overall = &forest.Row{
		ID: "all", Label: "Overall",
		Point: floatPtr(1.05), Lower: floatPtr(0.85), Upper: floatPtr(1.3),
		Marker: &forest.MarkerOverride{Color: "#123456"},
	}
	svg := mustRender(t, spec)

	if !strings.Contains(svg, "Overall") {
		t.Error("summary label missing")
	}
	if !strings.Contains(svg, `fill="#123456"`) {
		t.Error("summary fill override missing")
	}
}

func TestSummaryDefaultFill(t *testing.T) {
	spec := flatSpec()
	spec.Data.Overall = &forest.Row{
		ID: "all", Label: "Overall",
		Point: floatPtr(1.05), Lower: floatPtr(0.85), Upper: floatPtr(1.3),
	}
	svg := mustRender(t, spec)
	// Markers and the default diamond share the first palette color, so
	// count occurrences: two row markers plus one diamond.
	if got := strings.Count(svg, `fill="#2f6f8f"`); got != 3 {
		t.Errorf("palette fills = %d, want 3", got)
	}
}

func TestLogScaleRender(t *testing.T) {
	spec := flatSpec()
	spec.Data.Scale = forest.ScaleLog
	svg := mustRender(t, spec)

	// Null shifts to 1 on the ratio scale and stays inside the domain.
	if !strings.Contains(svg, `stroke="#9aa3b2"`) {
		t.Error("null line missing on log scale")
	}
	if !strings.Contains(svg, "Alpha") {
		t.Error("rows missing on log scale")
	}
}

func TestPointOnlyRow(t *testing.T) {
	spec := &forest.Spec{Data: forest.Data{Rows: []forest.Row{
		{ID: "only", Label: "Only", Point: floatPtr(1)},
	}}}
	svg := mustRender(t, spec)

	if !strings.Contains(svg, "Only") {
		t.Error("row missing")
	}
	if !strings.Contains(svg, `fill="#2f6f8f"`) {
		t.Error("marker missing for a point-only row")
	}
}

func TestRowWithoutEstimate(t *testing.T) {
	spec := flatSpec()
	spec.Data.Rows = append(spec.Data.Rows, forest.Row{ID: "x", Label: "NoData"})
	svg := mustRender(t, spec)
	if !strings.Contains(svg, "NoData") {
		t.Error("estimate-free row should still render its label")
	}
}

func TestWeightScale(t *testing.T) {
	spec := flatSpec()
	spec.Data.WeightField = "w"
	spec.Data.Rows[0].Meta = map[string]any{"w": 1.0}
	spec.Data.Rows[1].Meta = map[string]any{"w": 4.0}

	r := newSVGRenderer()
	l, th, err := r.compose(spec)
	if err != nil {
		t.Fatalf("compose() error: %v", err)
	}
	d := newDrawing(l, spec, &th, nil)

	if got := d.weightScale(&spec.Data.Rows[1]); !approx(got, 1.6) {
		t.Errorf("weightScale(max) = %v, want 1.6", got)
	}
	// sqrt(1/4)*1.6 = 0.8, above the floor.
	if got := d.weightScale(&spec.Data.Rows[0]); !approx(got, 0.8) {
		t.Errorf("weightScale(quarter) = %v, want 0.8", got)
	}
}

func TestWeightScaleUnweighted(t *testing.T) {
	spec := flatSpec()
	r := newSVGRenderer()
	l, th, err := r.compose(spec)
	if err != nil {
		t.Fatalf("compose() error: %v", err)
	}
	d := newDrawing(l, spec, &th, nil)
	if got := d.weightScale(&spec.Data.Rows[0]); got != 1 {
		t.Errorf("weightScale without a weight field = %v, want 1", got)
	}
}

func TestWeightScaleFloor(t *testing.T) {
	spec := flatSpec()
	spec.Data.WeightField = "w"
	spec.Data.Rows[0].Meta = map[string]any{"w": 0.01}
	spec.Data.Rows[1].Meta = map[string]any{"w": 100.0}

	r := newSVGRenderer()
	l, th, err := r.compose(spec)
	if err != nil {
		t.Fatalf("compose() error: %v", err)
	}
	d := newDrawing(l, spec, &th, nil)
	if got := d.weightScale(&spec.Data.Rows[0]); !approx(got, 0.6) {
		t.Errorf("weightScale(tiny) = %v, want the 0.6 floor", got)
	}
}

func TestBoundX(t *testing.T) {
	spec := flatSpec()
	r := newSVGRenderer()
	l, th, err := r.compose(spec)
	if err != nil {
		t.Fatalf("compose() error: %v", err)
	}
	d := newDrawing(l, spec, &th, nil)

	if _, cut := d.boundX(l.Axis.Min); cut {
		t.Error("a bound at the limit is not truncated")
	}
	x, cut := d.boundX(l.Axis.Max + 1)
	if !cut {
		t.Error("a bound past the limit must report truncation")
	}
	if want := d.px.ToPixel(l.Axis.Max); !approx(x, want) {
		t.Errorf("clamped x = %v, want %v", x, want)
	}
}
