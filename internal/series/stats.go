package series

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/lox/rainview/internal/models"
)

// StatBundle describes one resampled series. Count includes missing buckets;
// the moments and extremes use present values only and are NaN when undefined.
type StatBundle struct {
	MissingFraction float64
	Mean            float64
	Std             float64
	Count           int
	Max             float64
	Min             float64
}

const (
	FieldMissing = "missing"
	FieldMean    = "mean"
	FieldStd     = "std"
	FieldLength  = "length"
	FieldMax     = "maxv"
	FieldMin     = "minv"
)

// StatFields is the row order used by Combined.
var StatFields = []string{FieldMissing, FieldMean, FieldStd, FieldLength, FieldMax, FieldMin}

func Summarize(s models.ResampledSeries) StatBundle {
	values := make(stats.Float64Data, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Value.Valid && !math.IsNaN(p.Value.Float64) {
			values = append(values, p.Value.Float64)
		}
	}

	b := StatBundle{
		Count:           len(s.Points),
		MissingFraction: math.NaN(),
		Mean:            math.NaN(),
		Std:             math.NaN(),
		Max:             math.NaN(),
		Min:             math.NaN(),
	}
	if b.Count > 0 {
		b.MissingFraction = float64(b.Count-len(values)) / float64(b.Count)
	}
	if len(values) == 0 {
		return b
	}

	b.Mean, _ = stats.Mean(values)
	b.Max, _ = stats.Max(values)
	b.Min, _ = stats.Min(values)
	if len(values) > 1 {
		b.Std, _ = stats.StandardDeviationSample(values)
	}
	return b
}

func (b StatBundle) field(name string) float64 {
	switch name {
	case FieldMissing:
		return b.MissingFraction
	case FieldMean:
		return b.Mean
	case FieldStd:
		return b.Std
	case FieldLength:
		return float64(b.Count)
	case FieldMax:
		return b.Max
	case FieldMin:
		return b.Min
	}
	return math.NaN()
}

// Combined is a column-aligned view over several bundles: Values[field][i]
// belongs to the i-th input bundle.
type Combined struct {
	Fields []string
	Values map[string][]float64
}

func Combine(bundles []StatBundle) Combined {
	c := Combined{
		Fields: append([]string(nil), StatFields...),
		Values: make(map[string][]float64, len(StatFields)),
	}
	for _, f := range c.Fields {
		col := make([]float64, len(bundles))
		for i, b := range bundles {
			col[i] = b.field(f)
		}
		c.Values[f] = col
	}
	return c
}

// Format renders every cell for display, e.g. "12.50%" or "  812.34".
func (c Combined) Format() map[string][]string {
	out := make(map[string][]string, len(c.Fields))
	for _, f := range c.Fields {
		col := make([]string, len(c.Values[f]))
		for i, v := range c.Values[f] {
			col[i] = formatStat(f, v)
		}
		out[f] = col
	}
	return out
}

func formatStat(field string, v float64) string {
	switch field {
	case FieldMissing:
		if math.IsNaN(v) {
			return "nan%"
		}
		return fmt.Sprintf("%.2f%%", v*100)
	case FieldLength:
		return fmt.Sprintf("%10d", int(v))
	case FieldMax, FieldMin:
		return fmt.Sprintf("%8.1f", v)
	default:
		return fmt.Sprintf("%8.2f", v)
	}
}
