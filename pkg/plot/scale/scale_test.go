package scale

import (
	"math"
	"testing"
)

const tol = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestNiceDomainLinear(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi float64
		wantLo float64
		wantHi float64
	}{
		{name: "unit span", lo: 0.13, hi: 0.87, wantLo: 0.1, wantHi: 0.9},
		{name: "already nice", lo: 0, hi: 1, wantLo: 0, wantHi: 1},
		{name: "negative range", lo: -1.3, hi: 2.7, wantLo: -1.5, wantHi: 3},
		{name: "large values", lo: 123, hi: 987, wantLo: 100, wantHi: 1000},
		{name: "small values", lo: 0.012, hi: 0.089, wantLo: 0.01, wantHi: 0.09},
		{name: "symmetric", lo: -2.2, hi: 2.2, wantLo: -2.5, wantHi: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLo, gotHi := NiceDomain(tt.lo, tt.hi, false)
			if !approx(gotLo, tt.wantLo) || !approx(gotHi, tt.wantHi) {
				t.Errorf("NiceDomain(%v, %v, false) = (%v, %v), want (%v, %v)",
					tt.lo, tt.hi, gotLo, gotHi, tt.wantLo, tt.wantHi)
			}
		})
	}
}

func TestNiceDomainLog(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi float64
		wantLo float64
		wantHi float64
	}{
		{name: "around one", lo: 0.73, hi: 1.4, wantLo: 0.5, wantHi: 2},
		{name: "snap exact", lo: 0.5, hi: 2, wantLo: 0.5, wantHi: 2},
		{name: "wide ratio", lo: 0.13, hi: 42, wantLo: 0.1, wantHi: 50},
		{name: "above snap range", lo: 150, hi: 900, wantLo: 150, wantHi: 900},
		{name: "below snap range", lo: 0.003, hi: 0.05, wantLo: 0.003, wantHi: 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLo, gotHi := NiceDomain(tt.lo, tt.hi, true)
			if !approx(gotLo, tt.wantLo) || !approx(gotHi, tt.wantHi) {
				t.Errorf("NiceDomain(%v, %v, true) = (%v, %v), want (%v, %v)",
					tt.lo, tt.hi, gotLo, gotHi, tt.wantLo, tt.wantHi)
			}
		})
	}
}

// TestNiceDomainContainment checks the core guarantee: the rounded
// domain always contains the input domain.
func TestNiceDomainContainment(t *testing.T) {
	inputs := []struct {
		lo, hi float64
	}{
		{0.13, 0.87},
		{-5.3, 11.1},
		{0.0001, 0.0009},
		{1234, 98765},
		{0.51, 1.99},
		{0.09, 101},
		{-0.001, 0.001},
	}

	for _, in := range inputs {
		for _, log := range []bool{false, true} {
			if log && in.lo <= 0 {
				continue
			}
			gotLo, gotHi := NiceDomain(in.lo, in.hi, log)
			if gotLo > in.lo+tol || gotHi < in.hi-tol {
				t.Errorf("NiceDomain(%v, %v, %v) = (%v, %v), does not contain input",
					in.lo, in.hi, log, gotLo, gotHi)
			}
		}
	}
}

func TestNiceDomainDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi float64
		log    bool
	}{
		{name: "zero span", lo: 2, hi: 2},
		{name: "inverted", lo: 3, hi: 1},
		{name: "nan low", lo: math.NaN(), hi: 1},
		{name: "inf high", lo: 0, hi: math.Inf(1)},
		{name: "log zero span", lo: 1, hi: 1, log: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLo, gotHi := NiceDomain(tt.lo, tt.hi, tt.log)
			// Degenerate inputs pass through unchanged.
			if !(math.IsNaN(tt.lo) && math.IsNaN(gotLo)) && gotLo != tt.lo {
				t.Errorf("lo = %v, want %v", gotLo, tt.lo)
			}
			if !(math.IsNaN(tt.hi) && math.IsNaN(gotHi)) && gotHi != tt.hi {
				t.Errorf("hi = %v, want %v", gotHi, tt.hi)
			}
		})
	}
}

func TestLinearScaleToPixel(t *testing.T) {
	s := NewLinear(0, 10, 100, 300)

	tests := []struct {
		name string
		v    float64
		want float64
	}{
		{name: "domain min", v: 0, want: 100},
		{name: "domain max", v: 10, want: 300},
		{name: "midpoint", v: 5, want: 200},
		{name: "below domain", v: -5, want: 0},
		{name: "above domain", v: 15, want: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ToPixel(tt.v); !approx(got, tt.want) {
				t.Errorf("ToPixel(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestLogScaleToPixel(t *testing.T) {
	s := NewLog(0.1, 10, 0, 200)

	tests := []struct {
		name string
		v    float64
		want float64
	}{
		{name: "domain min", v: 0.1, want: 0},
		{name: "domain max", v: 10, want: 200},
		{name: "geometric center", v: 1, want: 100},
		{name: "one decade up", v: 0.1 * 10, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ToPixel(tt.v); !approx(got, tt.want) {
				t.Errorf("ToPixel(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}

	t.Run("non-positive maps to NaN", func(t *testing.T) {
		if got := s.ToPixel(0); !math.IsNaN(got) {
			t.Errorf("ToPixel(0) = %v, want NaN", got)
		}
		if got := s.ToPixel(-1); !math.IsNaN(got) {
			t.Errorf("ToPixel(-1) = %v, want NaN", got)
		}
	})
}

func TestScaleRoundTrip(t *testing.T) {
	scales := []struct {
		name string
		s    *Scale
	}{
		{name: "linear", s: NewLinear(-3, 7, 50, 450)},
		{name: "log", s: NewLog(0.25, 16, 0, 640)},
	}
	values := []float64{0.3, 0.5, 1, 2, 4.5, 6.9}

	for _, sc := range scales {
		t.Run(sc.name, func(t *testing.T) {
			for _, v := range values {
				dmin, dmax := sc.s.Domain()
				if v < dmin || v > dmax {
					continue
				}
				px := sc.s.ToPixel(v)
				back := sc.s.FromPixel(px)
				if !approx(back, v) {
					t.Errorf("FromPixel(ToPixel(%v)) = %v, want %v", v, back, v)
				}
			}
		})
	}
}

func TestScaleNaN(t *testing.T) {
	s := NewLinear(0, 1, 0, 100)
	if got := s.ToPixel(math.NaN()); !math.IsNaN(got) {
		t.Errorf("ToPixel(NaN) = %v, want NaN", got)
	}
	if got := s.ToPixel(math.Inf(1)); !math.IsNaN(got) {
		t.Errorf("ToPixel(+Inf) = %v, want NaN", got)
	}
}

func TestScaleAccessors(t *testing.T) {
	s := NewLog(0.5, 2, 10, 90)

	dmin, dmax := s.Domain()
	if dmin != 0.5 || dmax != 2 {
		t.Errorf("Domain() = (%v, %v), want (0.5, 2)", dmin, dmax)
	}

	rmin, rmax := s.Range()
	if rmin != 10 || rmax != 90 {
		t.Errorf("Range() = (%v, %v), want (10, 90)", rmin, rmax)
	}

	if !s.Log() {
		t.Error("Log() = false, want true")
	}
	if NewLinear(0, 1, 0, 1).Log() {
		t.Error("Log() = true for linear scale, want false")
	}
}
