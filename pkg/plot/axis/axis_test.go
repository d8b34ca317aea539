package axis

import (
	"math"
	"testing"

	"github.com/matzehuels/forestplot/pkg/forest"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func rowPtrs(rows ...forest.Row) []*forest.Row {
	out := make([]*forest.Row, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Max(math.Abs(a), math.Abs(b)), 1)
}

// Three odds ratios around 1 with intervals inside [0.5, 2]: the axis
// snaps to exactly that window.
func TestComputeLogLimits(t *testing.T) {
	a := Compute(Params{
		Rows: rowPtrs(
			forest.Row{Point: floatPtr(0.8), Lower: floatPtr(0.6), Upper: floatPtr(1.05)},
			forest.Row{Point: floatPtr(0.9), Lower: floatPtr(0.7), Upper: floatPtr(1.2)},
			forest.Row{Point: floatPtr(1.1), Lower: floatPtr(0.85), Upper: floatPtr(1.9)},
		),
		Log:  true,
		Null: 1,
	})

	if !approx(a.Min, 0.5) || !approx(a.Max, 2) {
		t.Errorf("Compute() limits = [%v, %v], want [0.5, 2]", a.Min, a.Max)
	}
}

func TestComputeLinearLimits(t *testing.T) {
	a := Compute(Params{
		Rows: rowPtrs(
			forest.Row{Point: floatPtr(2), Lower: floatPtr(1), Upper: floatPtr(3.5)},
			forest.Row{Point: floatPtr(8), Lower: floatPtr(6), Upper: floatPtr(11)},
		),
		Null: 0,
	})

	if !approx(a.Min, 0) || !approx(a.Max, 11) {
		t.Errorf("Compute() limits = [%v, %v], want [0, 11]", a.Min, a.Max)
	}
}

func TestComputeExplicitBounds(t *testing.T) {
	a := Compute(Params{
		Rows: rowPtrs(
			forest.Row{Point: floatPtr(40), Lower: floatPtr(5), Upper: floatPtr(300)},
		),
		Config: forest.AxisConfig{Min: floatPtr(0.25), Max: floatPtr(4)},
		Log:    true,
		Null:   1,
	})

	// Pinned bounds pass through verbatim, no nice rounding.
	if a.Min != 0.25 || a.Max != 4 {
		t.Errorf("Compute() limits = [%v, %v], want [0.25, 4] verbatim", a.Min, a.Max)
	}
}

func TestComputeDefaultSpan(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantMin float64
		wantMax float64
	}{
		{name: "no rows log", params: Params{Log: true, Null: 1}, wantMin: 0.1, wantMax: 10},
		{name: "no rows linear", params: Params{Null: 0}, wantMin: -1, wantMax: 1},
		{
			name: "log discards non-positive estimates",
			params: Params{
				Rows: rowPtrs(forest.Row{Point: floatPtr(-2)}, forest.Row{Point: floatPtr(0)}),
				Log:  true,
				Null: 1,
			},
			wantMin: 0.1,
			wantMax: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Compute(tt.params)
			if !approx(a.Min, tt.wantMin) || !approx(a.Max, tt.wantMax) {
				t.Errorf("Compute() limits = [%v, %v], want [%v, %v]",
					a.Min, a.Max, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestComputeDegenerateSpread(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantMin float64
		wantMax float64
	}{
		{
			name: "single estimate at null log",
			params: Params{
				Rows: rowPtrs(forest.Row{Point: floatPtr(1)}),
				Log:  true,
				Null: 1,
			},
			wantMin: 0.5,
			wantMax: 2,
		},
		{
			name: "single estimate linear without null",
			params: Params{
				Rows:   rowPtrs(forest.Row{Point: floatPtr(5)}),
				Config: forest.AxisConfig{IncludeNull: boolPtr(false)},
			},
			wantMin: 4,
			wantMax: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Compute(tt.params)
			if !approx(a.Min, tt.wantMin) || !approx(a.Max, tt.wantMax) {
				t.Errorf("Compute() limits = [%v, %v], want [%v, %v]",
					a.Min, a.Max, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestComputeIntervalClipping(t *testing.T) {
	base := rowPtrs(
		forest.Row{Point: floatPtr(0.8)},
		forest.Row{Point: floatPtr(1.1)},
	)

	// Nice estimate range [0.5, 2], clip boundary [1/6, 6] at factor 3.

	t.Run("bound inside boundary extends axis", func(t *testing.T) {
		rows := append(base, rowPtrs(
			forest.Row{Point: floatPtr(1), Upper: floatPtr(3.5)},
		)...)
		a := Compute(Params{Rows: rows, Log: true, Null: 1})
		if !approx(a.Min, 0.5) || !approx(a.Max, 5) {
			t.Errorf("Compute() limits = [%v, %v], want [0.5, 5]", a.Min, a.Max)
		}
	})

	t.Run("bound beyond boundary stops at it", func(t *testing.T) {
		rows := append(base, rowPtrs(
			forest.Row{Point: floatPtr(1), Upper: floatPtr(50)},
		)...)
		a := Compute(Params{Rows: rows, Log: true, Null: 1})
		// Absorbed only out to 6, then nice-rounded up.
		if !approx(a.Min, 0.5) || !approx(a.Max, 10) {
			t.Errorf("Compute() limits = [%v, %v], want [0.5, 10]", a.Min, a.Max)
		}
		if !a.Truncated(50) {
			t.Errorf("Truncated(50) = false, want true")
		}
	})
}

func TestComputeSymmetric(t *testing.T) {
	t.Run("log mirrors as ratios around null", func(t *testing.T) {
		a := Compute(Params{
			Rows: rowPtrs(
				forest.Row{Point: floatPtr(0.9)},
				forest.Row{Point: floatPtr(4), Upper: floatPtr(8)},
			),
			Config: forest.AxisConfig{Symmetric: true},
			Log:    true,
			Null:   1,
		})
		// Estimate range [0.5, 5] mirrors to [0.2, 5]; the interval
		// extension to 8 plays no part.
		if !approx(a.Min, 0.2) || !approx(a.Max, 5) {
			t.Errorf("Compute() limits = [%v, %v], want [0.2, 5]", a.Min, a.Max)
		}
	})

	t.Run("linear mirrors arithmetically", func(t *testing.T) {
		a := Compute(Params{
			Rows: rowPtrs(
				forest.Row{Point: floatPtr(-0.5)},
				forest.Row{Point: floatPtr(3)},
			),
			Config: forest.AxisConfig{Symmetric: true},
			Null:   0,
		})
		if !approx(a.Min, -3) || !approx(a.Max, 3) {
			t.Errorf("Compute() limits = [%v, %v], want [-3, 3]", a.Min, a.Max)
		}
	})
}

func TestComputeSingleSidedOverride(t *testing.T) {
	a := Compute(Params{
		Rows: rowPtrs(
			forest.Row{Point: floatPtr(0.8)},
			forest.Row{Point: floatPtr(1.1)},
		),
		Config: forest.AxisConfig{Max: floatPtr(3)},
		Log:    true,
		Null:   1,
	})

	// One pinned side still goes through the final nice rounding.
	if !approx(a.Min, 0.5) || !approx(a.Max, 5) {
		t.Errorf("Compute() limits = [%v, %v], want [0.5, 5]", a.Min, a.Max)
	}
}

func TestComputeMultipleEffects(t *testing.T) {
	a := Compute(Params{
		Rows: rowPtrs(
			forest.Row{
				Point: floatPtr(1.2),
				Meta:  map[string]any{"adj": 3.8, "adj_hi": 7.0},
			},
		),
		Effects: []forest.Effect{
			{},
			{Field: "adj", Lower: "adj_lo", Upper: "adj_hi"},
		},
		Log:  true,
		Null: 1,
	})

	if !approx(a.Min, 1) || !approx(a.Max, 10) {
		t.Errorf("Compute() limits = [%v, %v], want [1, 10]", a.Min, a.Max)
	}
}

func TestRegion(t *testing.T) {
	t.Run("linear margin", func(t *testing.T) {
		a := Compute(Params{
			Config:  forest.AxisConfig{Min: floatPtr(0), Max: floatPtr(10)},
			WidthPx: 500,
			PointPx: 10,
		})
		if !approx(a.RegionMin, -0.1) || !approx(a.RegionMax, 10.1) {
			t.Errorf("region = [%v, %v], want [-0.1, 10.1]", a.RegionMin, a.RegionMax)
		}
	})

	t.Run("log margin is ratio symmetric", func(t *testing.T) {
		a := Compute(Params{
			Config:  forest.AxisConfig{Min: floatPtr(0.5), Max: floatPtr(2)},
			Log:     true,
			WidthPx: 400,
			PointPx: 8,
		})
		if a.RegionMin >= a.Min || a.RegionMax <= a.Max {
			t.Fatalf("region [%v, %v] must strictly contain limits [%v, %v]",
				a.RegionMin, a.RegionMax, a.Min, a.Max)
		}
		if !approx(a.RegionMax/a.Max, a.Min/a.RegionMin) {
			t.Errorf("expansion ratios differ: %v vs %v",
				a.RegionMax/a.Max, a.Min/a.RegionMin)
		}
	})

	t.Run("log margin capped", func(t *testing.T) {
		a := Compute(Params{
			Config:  forest.AxisConfig{Min: floatPtr(0.5), Max: floatPtr(2)},
			Log:     true,
			WidthPx: 4,
			PointPx: 8,
		})
		if !approx(a.RegionMax/a.Max, maxRegionFactor) {
			t.Errorf("expansion factor = %v, want capped at %v",
				a.RegionMax/a.Max, maxRegionFactor)
		}
	})

	t.Run("margin disabled", func(t *testing.T) {
		a := Compute(Params{
			Config: forest.AxisConfig{
				Min:          floatPtr(0),
				Max:          floatPtr(10),
				MarkerMargin: boolPtr(false),
			},
			WidthPx: 500,
			PointPx: 10,
		})
		if a.RegionMin != a.Min || a.RegionMax != a.Max {
			t.Errorf("region = [%v, %v], want limits [%v, %v] untouched",
				a.RegionMin, a.RegionMax, a.Min, a.Max)
		}
	})

	t.Run("zero width degrades to limits", func(t *testing.T) {
		a := Compute(Params{
			Config:  forest.AxisConfig{Min: floatPtr(0), Max: floatPtr(10)},
			PointPx: 10,
		})
		if a.RegionMin != 0 || a.RegionMax != 10 {
			t.Errorf("region = [%v, %v], want [0, 10]", a.RegionMin, a.RegionMax)
		}
	})
}

func TestExplicitTicks(t *testing.T) {
	a := Compute(Params{
		Config: forest.AxisConfig{
			Min:        floatPtr(0.5),
			Max:        floatPtr(2),
			TickValues: []float64{0.25, 0.5, 1, 2, 4},
		},
		Log:  true,
		Null: 1,
	})

	want := []float64{0.5, 1, 2}
	if len(a.Ticks) != len(want) {
		t.Fatalf("Ticks = %v, want %v", a.Ticks, want)
	}
	for i, v := range want {
		if !approx(a.Ticks[i], v) {
			t.Errorf("Ticks[%d] = %v, want %v", i, a.Ticks[i], v)
		}
	}
}

func TestExplicitTicksNullForced(t *testing.T) {
	a := Compute(Params{
		Config: forest.AxisConfig{
			Min:        floatPtr(0.5),
			Max:        floatPtr(2),
			TickValues: []float64{0.5, 2},
			NullTick:   true,
		},
		Log:  true,
		Null: 1,
	})

	want := []float64{0.5, 1, 2}
	if len(a.Ticks) != len(want) {
		t.Fatalf("Ticks = %v, want %v", a.Ticks, want)
	}
	for i, v := range want {
		if !approx(a.Ticks[i], v) {
			t.Errorf("Ticks[%d] = %v, want %v", i, a.Ticks[i], v)
		}
	}
}

func TestAutoTicksWithinLimits(t *testing.T) {
	a := Compute(Params{
		Rows: rowPtrs(
			forest.Row{Point: floatPtr(0.8), Lower: floatPtr(0.6), Upper: floatPtr(1.05)},
			forest.Row{Point: floatPtr(1.1), Lower: floatPtr(0.85), Upper: floatPtr(1.9)},
		),
		Log:  true,
		Null: 1,
	})

	if len(a.Ticks) == 0 {
		t.Fatal("Compute() produced no ticks")
	}
	for _, v := range a.Ticks {
		if v < a.Min || v > a.Max {
			t.Errorf("tick %v outside limits [%v, %v]", v, a.Min, a.Max)
		}
	}
	if !hasValue(a.Ticks, 1) {
		t.Errorf("Ticks = %v, want the null value 1 present", a.Ticks)
	}
}

func TestTruncated(t *testing.T) {
	a := Axis{Min: 0.5, Max: 2}

	tests := []struct {
		v    float64
		want bool
	}{
		{v: 0.3, want: true},
		{v: 3, want: true},
		{v: 1, want: false},
		{v: 0.5, want: false},
		{v: 2, want: false},
		{v: math.NaN(), want: false},
	}
	for _, tt := range tests {
		if got := a.Truncated(tt.v); got != tt.want {
			t.Errorf("Truncated(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestAxisScale(t *testing.T) {
	a := Compute(Params{
		Config: forest.AxisConfig{Min: floatPtr(0.5), Max: floatPtr(2)},
		Log:    true,
		Null:   1,
	})

	s := a.Scale(0, 300)
	if got := s.ToPixel(a.RegionMin); !approx(got, 0) {
		t.Errorf("ToPixel(RegionMin) = %v, want 0", got)
	}
	if got := s.ToPixel(a.RegionMax); !approx(got, 300) {
		t.Errorf("ToPixel(RegionMax) = %v, want 300", got)
	}
	if !s.Log() {
		t.Error("Scale() should inherit the log flag")
	}
}
