// Package format builds the display strings shared by column sizing and
// rendering.
//
// The column width engine measures exactly the strings the renderers
// draw, so every cell value is formatted through this package and
// nowhere else. All functions return "" for non-finite primary values;
// a missing value blanks the cell rather than erroring.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number formats v with a fixed number of decimal places.
// Non-finite values return "". Negative zero normalizes to zero.
func Number(v float64, decimals int) string {
	if !isFinite(v) {
		return ""
	}
	if v == 0 {
		v = 0
	}
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// Interval formats a point estimate with its confidence bounds, as in
// "1.23 (0.98, 1.55)". A non-finite point returns ""; non-finite bounds
// drop the parenthesized part.
func Interval(point, lower, upper float64, decimals int) string {
	if !isFinite(point) {
		return ""
	}
	if !isFinite(lower) || !isFinite(upper) {
		return Number(point, decimals)
	}
	return fmt.Sprintf("%s (%s, %s)",
		Number(point, decimals), Number(lower, decimals), Number(upper, decimals))
}

// Range formats a value pair as "0.98–1.55" with an en dash.
// Either bound missing returns "".
func Range(lower, upper float64, decimals int) string {
	if !isFinite(lower) || !isFinite(upper) {
		return ""
	}
	return Number(lower, decimals) + "–" + Number(upper, decimals)
}

// PValueOptions controls p-value formatting.
type PValueOptions struct {
	Decimals   int     // fixed decimal places (0 means default 3)
	Threshold  float64 // values below this render as "<threshold" (0 means default 0.001)
	Scientific bool    // render sub-threshold values in scientific notation
}

// PValue formats a p-value. Values at or above the threshold use fixed
// decimals; smaller values render as "<0.001" or, with Scientific set,
// as "1.2×10⁻⁵" using Unicode superscript exponents.
func PValue(p float64, opts PValueOptions) string {
	if !isFinite(p) {
		return ""
	}

	decimals := opts.Decimals
	if decimals <= 0 {
		decimals = 3
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = 0.001
	}

	if p >= threshold {
		return Number(p, decimals)
	}

	if opts.Scientific && p > 0 {
		return scientific(p)
	}

	return "<" + trimFloat(threshold)
}

// scientific renders p as "m×10ᵉ" with a one-decimal mantissa.
func scientific(p float64) string {
	exp := int(math.Floor(math.Log10(p)))
	mantissa := p / math.Pow(10, float64(exp))
	if mantissa >= 9.95 {
		mantissa /= 10
		exp++
	}
	return fmt.Sprintf("%.1f×10%s", mantissa, superscript(exp))
}

// superscriptRunes maps ASCII exponent characters to their Unicode
// superscript forms.
var superscriptRunes = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³',
	'4': '⁴', '5': '⁵', '6': '⁶', '7': '⁷',
	'8': '⁸', '9': '⁹', '-': '⁻', '+': '⁺',
}

func superscript(exp int) string {
	var b strings.Builder
	for _, r := range strconv.Itoa(exp) {
		if s, ok := superscriptRunes[r]; ok {
			b.WriteRune(s)
		}
	}
	return b.String()
}

// Count formats an event count over a total with the percentage, as in
// "12/345 (3.5%)". A non-positive total drops the percentage.
func Count(events, total int) string {
	if total <= 0 {
		return fmt.Sprintf("%d/%d", events, total)
	}
	pct := float64(events) / float64(total) * 100
	return fmt.Sprintf("%d/%d (%s%%)", events, total, Number(pct, 1))
}

// Percent formats a 0–1 fraction as a percentage: Percent(0.035, 1) is
// "3.5%".
func Percent(v float64, decimals int) string {
	if !isFinite(v) {
		return ""
	}
	return Number(v*100, decimals) + "%"
}

// Stars renders a filled/empty star gauge, as in "★★★☆☆".
func Stars(n, max int) string {
	if max <= 0 {
		return ""
	}
	if n < 0 {
		n = 0
	}
	if n > max {
		n = max
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", max-n)
}

// Tick formats an axis tick value with float noise removed, keeping up
// to eight significant digits and avoiding exponent notation.
func Tick(v float64) string {
	if !isFinite(v) {
		return ""
	}
	if v == 0 {
		return "0"
	}
	s := strconv.FormatFloat(v, 'g', 8, 64)
	if strings.ContainsAny(s, "eE") {
		f, _ := strconv.ParseFloat(s, 64)
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

// trimFloat formats a float compactly, without trailing zeros.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
