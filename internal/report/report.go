// Package report serves the chart, stats table, download and tick requests of
// the dashboard. It loads series from the archive, runs them through the
// resampling and trend pipeline and shapes the results for rendering.
package report

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/lox/rainview/internal/metrics"
	"github.com/lox/rainview/internal/models"
	"github.com/lox/rainview/internal/series"
)

// SeriesStore is the read side of the station archive.
type SeriesStore interface {
	RawSeries(stationID string) (models.RawSeries, error)
	StationMeta(stationID string) (models.Station, error)
	AllStations() ([]models.Station, error)
}

// Request selects stations and how their series are summarised. Station order
// is preserved in every response. A year range that selects nothing, including
// one with Start after End, yields empty series rather than an error.
type Request struct {
	StationIDs []string
	Years      series.YearRange
	Frequency  models.Frequency
	Summary    models.Summary
}

func (r Request) Validate() error {
	if len(r.StationIDs) == 0 {
		return fmt.Errorf("%w: no stations selected", models.ErrInvalidArgument)
	}
	if _, err := r.Frequency.ExpectedDays(); err != nil {
		return err
	}
	if r.Summary != models.Total && r.Summary != models.Max {
		return fmt.Errorf("%w: unsupported summary %v", models.ErrInvalidArgument, r.Summary)
	}
	return nil
}

type Service struct {
	store     SeriesStore
	resampler *series.Resampler
	fitter    *series.TrendFitter
}

func NewService(store SeriesStore, cfg series.Config) (*Service, error) {
	resampler, err := series.NewResampler(cfg)
	if err != nil {
		return nil, err
	}
	fitter, err := series.NewTrendFitter(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{store: store, resampler: resampler, fitter: fitter}, nil
}

// Stations lists the catalog for station pickers.
func (s *Service) Stations() ([]models.Station, error) {
	return s.store.AllStations()
}

type stationSeries struct {
	station models.Station
	series  models.ResampledSeries
}

// load resamples and range-filters every requested station in parallel.
// Results are indexed like req.StationIDs.
func (s *Service) load(ctx context.Context, req Request) ([]stationSeries, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out := make([]stationSeries, len(req.StationIDs))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range req.StationIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st, err := s.store.StationMeta(id)
			if err != nil {
				return err
			}
			raw, err := s.store.RawSeries(id)
			if err != nil {
				return err
			}
			rs, err := s.resampler.Resample(raw, req.Frequency, req.Summary)
			if err != nil {
				return fmt.Errorf("resample %s: %w", id, err)
			}
			metrics.Resamples.WithLabelValues(string(req.Frequency), req.Summary.String()).Inc()
			out[i] = stationSeries{station: st, series: series.FilterRange(rs, req.Years)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// fit runs the trend fit, substituting the empty fit when there is too little data.
func (s *Service) fit(ss stationSeries) series.FitResult {
	res, err := s.fitter.Fit(ss.series)
	if errors.Is(err, models.ErrInsufficientData) {
		log.Printf("report: %s: %v", ss.station.StationID, err)
		metrics.Fits.WithLabelValues("insufficient").Inc()
		return series.EmptyFit()
	}
	metrics.Fits.WithLabelValues("ok").Inc()
	return res
}
