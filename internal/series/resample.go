package series

import (
	"fmt"
	"math"

	"github.com/lox/rainview/internal/models"
)

type Resampler struct {
	threshold float64
}

func NewResampler(cfg Config) (*Resampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Resampler{threshold: cfg.SufficiencyThreshold}, nil
}

// Resample aggregates a daily series into calendar buckets. Every bucket between
// the first and last sample is emitted; a bucket is missing unless strictly more
// than threshold × expected days hold a value.
func (r *Resampler) Resample(raw models.RawSeries, freq models.Frequency, summary models.Summary) (models.ResampledSeries, error) {
	out := models.ResampledSeries{StationID: raw.StationID, Frequency: freq, Summary: summary}

	if summary != models.Total && summary != models.Max {
		return out, fmt.Errorf("%w: unsupported summary %v", models.ErrInvalidArgument, summary)
	}
	expected, err := freq.ExpectedDays()
	if err != nil {
		return out, err
	}
	if err := raw.Validate(); err != nil {
		return out, err
	}
	if len(raw.Samples) == 0 {
		return out, nil
	}

	minPresent := r.threshold * expected

	start, err := bucketStart(models.Day(raw.Samples[0].Date), freq)
	if err != nil {
		return out, err
	}
	last, err := bucketStart(models.Day(raw.Samples[len(raw.Samples)-1].Date), freq)
	if err != nil {
		return out, err
	}

	i := 0
	for b := start; !b.After(last); b = nextBucket(b, freq) {
		end := nextBucket(b, freq)

		var present int
		var sum float64
		peak := math.Inf(-1)
		for ; i < len(raw.Samples) && models.Day(raw.Samples[i].Date).Before(end); i++ {
			v := raw.Samples[i].Rainfall
			if !v.Valid || math.IsNaN(v.Float64) {
				continue
			}
			present++
			sum += v.Float64
			peak = math.Max(peak, v.Float64)
		}

		p := models.Point{Time: b}
		if float64(present) > minPresent {
			switch summary {
			case models.Total:
				p.Value = models.Value(sum)
			case models.Max:
				p.Value = models.Value(peak)
			}
		}
		out.Points = append(out.Points, p)
	}

	return out, nil
}
