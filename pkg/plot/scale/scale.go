// Package scale provides nice numeric domains and value-to-pixel scales
// for the effect axis.
//
// A Scale maps a numeric domain onto a pixel range, linearly or in log10
// space. Domains are usually rounded to "nice" human-friendly bounds with
// [NiceDomain] before a Scale is constructed, and tick values are chosen
// with [Ticks]. The interactive plot handle and the static renderer share
// the same Scale values, which keeps marker positions identical across
// outputs.
package scale

import "math"

const eps = 1e-9

// niceSteps are the candidate linear step mantissas, applied at the
// magnitude of the input span.
var niceSteps = [...]float64{0.1, 0.2, 0.5, 1.0}

// logSnap holds the canonical snap candidates for log domains, covering
// the two decades around 1 plus their halves and doubles.
var logSnap = [...]float64{0.1, 0.2, 0.5, 1, 2, 5, 10, 20, 50, 100}

// NiceDomain expands [lo, hi] to human-friendly bounds.
//
// Linear domains round outward to multiples of a step chosen from
// 0.1/0.2/0.5/1 times the span's order of magnitude, whichever lands
// closest to a tenth of the span (ties prefer the smaller step). Log
// domains snap lo down and hi up to the nearest values from the
// canonical set {0.1, 0.2, 0.5, 1, 2, 5, 10, 20, 50, 100}; bounds
// outside that set's range pass through unchanged.
//
// The returned domain always contains the input. Degenerate inputs
// (non-finite bounds, hi <= lo) are returned unchanged; callers expand
// zero spans before rounding.
func NiceDomain(lo, hi float64, log bool) (float64, float64) {
	if !isFinite(lo) || !isFinite(hi) || hi-lo <= 0 {
		return lo, hi
	}
	if log {
		return niceLogDomain(lo, hi)
	}
	return niceLinearDomain(lo, hi)
}

func niceLinearDomain(lo, hi float64) (float64, float64) {
	span := hi - lo
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	target := span / 10

	step := niceSteps[0] * mag
	best := math.Abs(step - target)
	for _, s := range niceSteps[1:] {
		candidate := s * mag
		if d := math.Abs(candidate - target); d < best-eps {
			step = candidate
			best = d
		}
	}

	nlo := math.Floor(lo/step+eps) * step
	nhi := math.Ceil(hi/step-eps) * step
	return nlo, nhi
}

func niceLogDomain(lo, hi float64) (float64, float64) {
	if lo <= 0 {
		return lo, hi
	}

	nlo := lo
	if lo >= logSnap[0] && lo <= logSnap[len(logSnap)-1] {
		for i := len(logSnap) - 1; i >= 0; i-- {
			if logSnap[i] <= lo*(1+eps) {
				nlo = logSnap[i]
				break
			}
		}
	}

	nhi := hi
	if hi >= logSnap[0] && hi <= logSnap[len(logSnap)-1] {
		for _, s := range logSnap {
			if s >= hi*(1-eps) {
				nhi = s
				break
			}
		}
	}

	return nlo, nhi
}

// Scale maps a numeric domain onto a pixel range.
//
// The zero value is not usable; construct with [NewLinear] or [NewLog].
// Scales are immutable and safe for concurrent use.
type Scale struct {
	domainMin float64
	domainMax float64
	rangeMin  float64
	rangeMax  float64
	log       bool
}

// NewLinear returns a linear scale mapping [domainMin, domainMax] onto
// [rangeMin, rangeMax].
func NewLinear(domainMin, domainMax, rangeMin, rangeMax float64) *Scale {
	return &Scale{
		domainMin: domainMin,
		domainMax: domainMax,
		rangeMin:  rangeMin,
		rangeMax:  rangeMax,
	}
}

// NewLog returns a log10 scale mapping [domainMin, domainMax] onto
// [rangeMin, rangeMax]. Both domain bounds must be positive; values at
// or below zero map to NaN.
func NewLog(domainMin, domainMax, rangeMin, rangeMax float64) *Scale {
	return &Scale{
		domainMin: domainMin,
		domainMax: domainMax,
		rangeMin:  rangeMin,
		rangeMax:  rangeMax,
		log:       true,
	}
}

// ToPixel converts a domain value to a pixel position.
// Non-finite values, and non-positive values on log scales, map to NaN.
func (s *Scale) ToPixel(v float64) float64 {
	if !isFinite(v) {
		return math.NaN()
	}

	var t float64
	if s.log {
		if v <= 0 || s.domainMin <= 0 || s.domainMax <= 0 {
			return math.NaN()
		}
		span := math.Log10(s.domainMax) - math.Log10(s.domainMin)
		if math.Abs(span) < eps {
			return (s.rangeMin + s.rangeMax) / 2
		}
		t = (math.Log10(v) - math.Log10(s.domainMin)) / span
	} else {
		span := s.domainMax - s.domainMin
		if math.Abs(span) < eps {
			return (s.rangeMin + s.rangeMax) / 2
		}
		t = (v - s.domainMin) / span
	}

	return s.rangeMin + t*(s.rangeMax-s.rangeMin)
}

// FromPixel converts a pixel position back to a domain value.
// It is the inverse of ToPixel for in-range values.
func (s *Scale) FromPixel(px float64) float64 {
	span := s.rangeMax - s.rangeMin
	if math.Abs(span) < eps {
		return s.domainMin
	}
	t := (px - s.rangeMin) / span

	if s.log {
		if s.domainMin <= 0 || s.domainMax <= 0 {
			return math.NaN()
		}
		lmin := math.Log10(s.domainMin)
		lmax := math.Log10(s.domainMax)
		return math.Pow(10, lmin+t*(lmax-lmin))
	}
	return s.domainMin + t*(s.domainMax-s.domainMin)
}

// Domain returns the scale's domain bounds.
func (s *Scale) Domain() (min, max float64) {
	return s.domainMin, s.domainMax
}

// Range returns the scale's pixel range bounds.
func (s *Scale) Range() (min, max float64) {
	return s.rangeMin, s.rangeMax
}

// Log reports whether the scale operates in log10 space.
func (s *Scale) Log() bool {
	return s.log
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
