package report

import (
	"context"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lox/rainview/internal/metrics"
	"github.com/lox/rainview/internal/models"
	"github.com/lox/rainview/internal/series"
)

const significanceLevel = 0.05

type ChartSeries struct {
	Station models.Station
	Points  []models.Point
	Fit     series.FitResult
	Label   string
}

// Chart returns per-station bucket values with a fitted trend line. A station
// with too little data still appears, with an empty fit and p-value 1.
func (s *Service) Chart(ctx context.Context, req Request) ([]ChartSeries, error) {
	timer := prometheus.NewTimer(metrics.ReportDuration.WithLabelValues("chart"))
	defer timer.ObserveDuration()

	loaded, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]ChartSeries, len(loaded))
	for i, ss := range loaded {
		fit := s.fit(ss)
		out[i] = ChartSeries{
			Station: ss.station,
			Points:  ss.series.Points,
			Fit:     fit,
			Label:   SignificanceLabel(ss.station, fit),
		}
	}
	return out, nil
}

// SignificanceLabel describes a station's trend, e.g. "DE BILT (NLD): +1.52 mm/yr (p=0.003*)".
// An asterisk marks slopes significant at the 5% level.
func SignificanceLabel(st models.Station, fit series.FitResult) string {
	if math.IsNaN(fit.Slope) {
		return fmt.Sprintf("%s: trend n/a (p=%.3f)", st.Label(), fit.PValue)
	}
	mark := ""
	if fit.PValue < significanceLevel {
		mark = "*"
	}
	return fmt.Sprintf("%s: %+.2f mm/yr (p=%.3f%s)", st.Label(), fit.SlopePerYear(), fit.PValue, mark)
}
