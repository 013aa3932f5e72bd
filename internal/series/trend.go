package series

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lox/rainview/internal/models"
)

const secondsPerDay = 24 * 60 * 60

type FitResult struct {
	// Fitted holds the regression line evaluated at every input bucket, including
	// buckets whose value was missing.
	Fitted []models.Point
	// PValue is the two-sided OLS t-test p-value of the slope.
	PValue float64
	// Slope is in value units per day.
	Slope     float64
	Intercept float64
	// N is the number of points used in the regression.
	N int
}

// SlopePerYear converts the per-day slope to value units per year.
func (f FitResult) SlopePerYear() float64 {
	return f.Slope * 365.25
}

// EmptyFit is the result substituted when a series has too few points to fit.
func EmptyFit() FitResult {
	return FitResult{PValue: 1, Slope: math.NaN(), Intercept: math.NaN()}
}

type TrendFitter struct {
	epoch time.Time
}

func NewTrendFitter(cfg Config) (*TrendFitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TrendFitter{epoch: cfg.Epoch}, nil
}

// ElapsedDays returns whole days from the epoch to the calendar day of t.
func (f *TrendFitter) ElapsedDays(t time.Time) float64 {
	secs := models.Day(t).Unix() - models.Day(f.epoch).Unix()
	return float64(secs / secondsPerDay)
}

// Fit regresses value on elapsed days using the non-missing points of s.
// Fewer than two usable points yields ErrInsufficientData.
func (f *TrendFitter) Fit(s models.ResampledSeries) (FitResult, error) {
	var xs, ys []float64
	for _, p := range s.Points {
		if !p.Value.Valid || math.IsNaN(p.Value.Float64) {
			continue
		}
		xs = append(xs, f.ElapsedDays(p.Time))
		ys = append(ys, p.Value.Float64)
	}

	n := len(xs)
	if n < 2 {
		return EmptyFit(), fmt.Errorf("%w: station %s has %d usable points", models.ErrInsufficientData, s.StationID, n)
	}

	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - mx
		sxx += dx * dx
		sxy += dx * (ys[i] - my)
	}
	if sxx == 0 {
		return EmptyFit(), fmt.Errorf("%w: station %s has no spread in time", models.ErrInsufficientData, s.StationID)
	}

	slope := sxy / sxx
	intercept := my - slope*mx

	var sse float64
	for i := range xs {
		r := ys[i] - (intercept + slope*xs[i])
		sse += r * r
	}

	res := FitResult{
		Slope:     slope,
		Intercept: intercept,
		N:         n,
		PValue:    slopePValue(slope, sse, sxx, n),
		Fitted:    make([]models.Point, len(s.Points)),
	}
	for i, p := range s.Points {
		res.Fitted[i] = models.Point{Time: p.Time, Value: models.Value(intercept + slope*f.ElapsedDays(p.Time))}
	}
	return res, nil
}

// slopePValue is the two-sided p-value for H0: slope = 0. Two points leave no
// residual degrees of freedom and are reported as not evaluable (1.0).
func slopePValue(slope, sse, sxx float64, n int) float64 {
	df := float64(n - 2)
	if df <= 0 {
		return 1
	}
	se := math.Sqrt(sse / df / sxx)
	if se == 0 || math.IsNaN(se) {
		if slope == 0 {
			return 1
		}
		return 0
	}
	t := slope / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return math.Min(p, 1)
}
