// Package axis computes the effect axis of a plot: clipped nice limits,
// the half-marker plot region, and tick values.
//
// Limits derive from row estimates unless the spec pins both bounds.
// Confidence intervals may extend the limits only up to a clip boundary
// controlled by the clip factor; bounds beyond it render as truncation
// arrows instead of stretching the axis after one outlier. The plot
// region pads the limits so edge markers stay inside the frame, while
// the truncation test keeps using the strict limits. Axis computation
// never fails: unusable inputs degrade to a default span.
package axis

import (
	"math"
	"sort"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/plot/scale"
)

// Default spans when a spec carries no usable estimates.
const (
	defaultLogMin    = 0.1
	defaultLogMax    = 10
	defaultLinearMin = -1
	defaultLinearMax = 1
)

// defaultTickTarget is the tick count aimed for when the spec does not
// ask for one.
const defaultTickTarget = 6

// maxRegionFactor caps the log-scale margin expansion so very small
// plot widths cannot blow up the domain.
const maxRegionFactor = 1.65

// Params are the inputs to [Compute]. Rows is every row that plots a
// marker, the overall summary included; collapse state does not change
// the axis.
type Params struct {
	Rows    []*forest.Row
	Effects []forest.Effect
	Config  forest.AxisConfig
	Log     bool
	Null    float64

	// WidthPx and PointPx size the half-marker margin of the plot
	// region: the forest column width and the marker diameter, in
	// pixels.
	WidthPx float64
	PointPx float64
}

// Axis is a computed effect axis. Min and Max are the strict limits
// used for ticks and confidence-interval truncation; RegionMin and
// RegionMax add the marker margin and become the rendered domain.
type Axis struct {
	Min       float64
	Max       float64
	RegionMin float64
	RegionMax float64
	Ticks     []float64
	Log       bool
}

// Compute derives the axis from row estimates and configuration.
func Compute(p Params) Axis {
	lo, hi := p.limits()
	rlo, rhi := p.region(lo, hi)
	return Axis{
		Min:       lo,
		Max:       hi,
		RegionMin: rlo,
		RegionMax: rhi,
		Ticks:     p.ticks(lo, hi),
		Log:       p.Log,
	}
}

// Scale maps the plot region onto a pixel range. Both renderers build
// their coordinate transform through this one constructor, which keeps
// marker positions identical across outputs.
func (a Axis) Scale(rangeMin, rangeMax float64) *scale.Scale {
	if a.Log {
		return scale.NewLog(a.RegionMin, a.RegionMax, rangeMin, rangeMax)
	}
	return scale.NewLinear(a.RegionMin, a.RegionMax, rangeMin, rangeMax)
}

// Truncated reports whether a confidence bound lies beyond the axis
// limits and must render as an arrow. The test uses the limits, not
// the plot region.
func (a Axis) Truncated(v float64) bool {
	return isFinite(v) && (v < a.Min || v > a.Max)
}

func (p *Params) limits() (float64, float64) {
	// Both bounds pinned: no auto-computation at all.
	if p.Config.Min != nil && p.Config.Max != nil {
		return *p.Config.Min, *p.Config.Max
	}

	lo, hi, ok := p.estimateRange()
	if !ok {
		if p.Log {
			lo, hi = defaultLogMin, defaultLogMax
		} else {
			lo, hi = defaultLinearMin, defaultLinearMax
		}
	}

	if p.Config.NullIncluded() && p.usable(p.Null) {
		lo = math.Min(lo, p.Null)
		hi = math.Max(hi, p.Null)
	}

	// All estimates identical: synthesize a span and stop.
	if hi <= lo {
		return p.spread(lo)
	}

	// The nice estimate range anchors the clip boundary, so truncated
	// intervals stop on the same grid the final axis uses.
	estLo, estHi := scale.NiceDomain(lo, hi, p.Log)
	lo, hi = p.absorbIntervals(estLo, estHi)

	if p.Config.Symmetric {
		lo, hi = p.mirror(estLo, estHi)
	}

	if p.Config.Min != nil {
		lo = *p.Config.Min
	}
	if p.Config.Max != nil {
		hi = *p.Config.Max
	}

	nlo, nhi := scale.NiceDomain(lo, hi, p.Log)
	return nlo, nhi
}

// estimateRange scans every row and effect for finite point estimates.
func (p *Params) estimateRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	p.eachEstimate(func(e forest.Estimate) {
		if p.usable(e.Point) {
			lo = math.Min(lo, e.Point)
			hi = math.Max(hi, e.Point)
			ok = true
		}
	})
	return lo, hi, ok
}

// absorbIntervals grows [lo, hi] with confidence bounds, each clamped
// to the clip boundary so a single wide interval cannot stretch the
// whole axis. Clamped bounds still get room for their arrow.
func (p *Params) absorbIntervals(lo, hi float64) (float64, float64) {
	clipLo, clipHi := p.clipBoundary(lo, hi)
	min, max := lo, hi
	p.eachEstimate(func(e forest.Estimate) {
		if p.usable(e.Lower) {
			min = math.Min(min, math.Max(e.Lower, clipLo))
		}
		if p.usable(e.Upper) {
			max = math.Max(max, math.Min(e.Upper, clipHi))
		}
	})
	return min, max
}

// clipBoundary is the farthest confidence bounds may extend the axis:
// a ratio of the estimate range on log scales, a span multiple on
// linear ones.
func (p *Params) clipBoundary(lo, hi float64) (float64, float64) {
	f := p.Config.EffectiveClipFactor()
	if p.Log {
		return lo / f, hi * f
	}
	span := hi - lo
	return lo - span*f, hi + span*f
}

// mirror reflects the estimate range around the null value, in ratio
// terms on log scales. Symmetric axes use the estimate range before
// interval absorption.
func (p *Params) mirror(lo, hi float64) (float64, float64) {
	if p.Log {
		if p.Null <= 0 || lo <= 0 {
			return lo, hi
		}
		r := math.Max(hi/p.Null, p.Null/lo)
		return p.Null / r, p.Null * r
	}
	d := math.Max(hi-p.Null, p.Null-lo)
	return p.Null - d, p.Null + d
}

// spread synthesizes a span around a single estimate value.
func (p *Params) spread(v float64) (float64, float64) {
	var lo, hi float64
	if p.Log {
		lo, hi = v/2, v*2
	} else {
		d := math.Max(1, math.Abs(v)*0.1)
		lo, hi = v-d, v+d
	}
	return scale.NiceDomain(lo, hi, p.Log)
}

// region pads the limits by half a marker width, converted to domain
// units through the limits-to-pixel ratio.
func (p *Params) region(lo, hi float64) (float64, float64) {
	if !p.Config.MarginEnabled() || p.WidthPx <= 0 || p.PointPx <= 0 {
		return lo, hi
	}
	half := p.PointPx / 2

	if p.Log {
		if lo <= 0 {
			return lo, hi
		}
		span := math.Log10(hi) - math.Log10(lo)
		factor := math.Pow(10, span*half/p.WidthPx)
		if factor > maxRegionFactor {
			factor = maxRegionFactor
		}
		return lo / factor, hi * factor
	}

	margin := (hi - lo) * half / p.WidthPx
	return lo - margin, hi + margin
}

func (p *Params) ticks(lo, hi float64) []float64 {
	if len(p.Config.TickValues) > 0 {
		return p.explicitTicks(lo, hi)
	}
	target := p.Config.Ticks
	if target <= 0 {
		target = defaultTickTarget
	}
	return scale.Ticks(lo, hi, target, p.Log)
}

// explicitTicks filters configured tick values to the axis bounds and
// force-inserts the null tick when requested.
func (p *Params) explicitTicks(lo, hi float64) []float64 {
	ticks := make([]float64, 0, len(p.Config.TickValues)+1)
	for _, v := range p.Config.TickValues {
		if v >= lo && v <= hi && p.usable(v) {
			ticks = append(ticks, v)
		}
	}
	if p.Config.NullTick && p.usable(p.Null) &&
		p.Null >= lo && p.Null <= hi && !hasValue(ticks, p.Null) {
		ticks = append(ticks, p.Null)
	}
	sort.Float64s(ticks)
	return ticks
}

// usable reports whether a value can participate in axis math: finite,
// and positive on log scales.
func (p *Params) usable(v float64) bool {
	if !isFinite(v) {
		return false
	}
	return !p.Log || v > 0
}

func (p *Params) eachEstimate(fn func(forest.Estimate)) {
	effects := p.Effects
	if len(effects) == 0 {
		effects = []forest.Effect{{}}
	}
	for _, r := range p.Rows {
		for i := range effects {
			fn(r.Estimate(&effects[i]))
		}
	}
}

func hasValue(ticks []float64, v float64) bool {
	for _, t := range ticks {
		if math.Abs(t-v) < 1e-9 {
			return true
		}
	}
	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
