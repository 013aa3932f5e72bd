// Package ticks plans "nice" axis tick positions for a numeric range.
package ticks

import (
	"math"
	"strconv"
)

// niceSteps are candidate tick sizes for a range normalised to [1, 10), coarsest first.
var niceSteps = []float64{5, 2, 1, 0.5, 0.2, 0.1, 0.05, 0.02, 0.01}

// Auto returns ascending ticks at multiples of a nice step covering [lo, hi).
// The step is the finest candidate that keeps the tick count at or below
// maxTicks; when even the coarsest candidate is too fine the finest is used.
// A zero-width range yields the single tick lo. With insideOnly, ticks outside
// [lo, hi] are dropped.
func Auto(lo, hi float64, maxTicks int, insideOnly bool) []float64 {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo
	if span == 0 {
		return []float64{lo}
	}
	if maxTicks < 1 {
		maxTicks = 1
	}

	scale := math.Pow(10, math.Floor(math.Log10(span)))
	step := niceSteps[len(niceSteps)-1]
	for i, s := range niceSteps {
		if span/scale/s > float64(maxTicks) {
			if i > 0 {
				step = niceSteps[i-1]
			}
			break
		}
	}
	size := step * scale

	first := lo / size
	n := int(math.Ceil(hi/size - first))
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := math.RoundToEven(first+float64(i)) * size
		if len(out) > 0 && out[len(out)-1] == v {
			continue
		}
		if insideOnly && (v < lo || v > hi) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Labels formats ticks as integer labels.
func Labels(ticks []float64) []string {
	out := make([]string, len(ticks))
	for i, t := range ticks {
		out[i] = strconv.FormatInt(int64(math.Round(t)), 10)
	}
	return out
}
