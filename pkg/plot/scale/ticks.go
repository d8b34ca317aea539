package scale

import (
	"math"
	"sort"
)

// tickMantissas are the candidate step mantissas for linear tick
// placement, in the Wilkinson tradition.
var tickMantissas = [...]float64{1, 2, 2.5, 5, 10}

// Ticks returns tick values inside [lo, hi], aiming for target values.
//
// Linear ticks are multiples of a step q*10^k with q from
// {1, 2, 2.5, 5, 10}, choosing the step whose tick count lands closest
// to target (ties prefer the larger step). Log ticks are drawn from the
// mantissa-times-decade candidates (1..9 per decade) intersecting the
// domain; when more candidates exist than target, they are thinned by
// priority: the value 1 first, then remaining powers of ten, then the
// 2- and 5-mantissa values, then the rest.
//
// Degenerate domains (hi <= lo, non-finite bounds) return nil. The
// result is sorted ascending and always within [lo, hi].
func Ticks(lo, hi float64, target int, log bool) []float64 {
	if !isFinite(lo) || !isFinite(hi) || hi-lo <= 0 {
		return nil
	}
	if target < 2 {
		target = 2
	}
	if log {
		return logTicks(lo, hi, target)
	}
	return linearTicks(lo, hi, target)
}

func linearTicks(lo, hi float64, target int) []float64 {
	span := hi - lo
	base := math.Floor(math.Log10(span))

	var bestStep float64
	bestDiff := math.MaxFloat64
	for _, k := range [...]float64{base - 1, base, base + 1} {
		mag := math.Pow(10, k)
		for _, q := range tickMantissas {
			step := q * mag
			n := stepCount(lo, hi, step)
			if n < 2 {
				continue
			}
			diff := math.Abs(float64(n - target))
			if diff < bestDiff-eps || (math.Abs(diff-bestDiff) <= eps && step > bestStep) {
				bestStep = step
				bestDiff = diff
			}
		}
	}
	if bestStep == 0 {
		return nil
	}

	i0 := int(math.Ceil(lo/bestStep - eps))
	i1 := int(math.Floor(hi/bestStep + eps))
	ticks := make([]float64, 0, i1-i0+1)
	for i := i0; i <= i1; i++ {
		ticks = append(ticks, float64(i)*bestStep)
	}
	return ticks
}

// stepCount counts multiples of step inside [lo, hi].
func stepCount(lo, hi, step float64) int {
	return int(math.Floor(hi/step+eps)) - int(math.Ceil(lo/step-eps)) + 1
}

// logCandidate is a mantissa-times-decade tick candidate.
type logCandidate struct {
	value    float64
	mantissa int
}

func logTicks(lo, hi float64, target int) []float64 {
	if lo <= 0 {
		return nil
	}

	dlo := int(math.Floor(math.Log10(lo) + eps))
	dhi := int(math.Floor(math.Log10(hi) + eps))

	var cands []logCandidate
	for d := dlo; d <= dhi; d++ {
		mag := math.Pow(10, float64(d))
		for m := 1; m <= 9; m++ {
			v := float64(m) * mag
			if v >= lo*(1-eps) && v <= hi*(1+eps) {
				cands = append(cands, logCandidate{value: v, mantissa: m})
			}
		}
	}

	if len(cands) <= target {
		ticks := make([]float64, len(cands))
		for i, c := range cands {
			ticks[i] = c.value
		}
		return ticks
	}

	// Thin by priority class, keeping whole classes while they fit and
	// striding evenly through the class that overflows.
	var buckets [4][]float64
	for _, c := range cands {
		p := logTickPriority(c)
		buckets[p] = append(buckets[p], c.value)
	}

	ticks := make([]float64, 0, target)
	remaining := target
	for _, bucket := range buckets {
		if remaining == 0 {
			break
		}
		if len(bucket) == 0 {
			continue
		}
		if len(bucket) <= remaining {
			ticks = append(ticks, bucket...)
			remaining -= len(bucket)
			continue
		}
		stride := int(math.Ceil(float64(len(bucket)) / float64(remaining)))
		for i := 0; i < len(bucket) && remaining > 0; i += stride {
			ticks = append(ticks, bucket[i])
			remaining--
		}
		break
	}

	sort.Float64s(ticks)
	return ticks
}

// logTickPriority ranks log tick candidates: the value 1 beats other
// powers of ten, which beat the half/double family (mantissas 2 and 5,
// including 0.5 via the 5-mantissa of the previous decade), which beats
// everything else.
func logTickPriority(c logCandidate) int {
	switch {
	case math.Abs(c.value-1) <= eps:
		return 0
	case c.mantissa == 1:
		return 1
	case c.mantissa == 2 || c.mantissa == 5:
		return 2
	default:
		return 3
	}
}
