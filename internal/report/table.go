package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lox/rainview/internal/metrics"
	"github.com/lox/rainview/internal/models"
	"github.com/lox/rainview/internal/series"
	"github.com/lox/rainview/internal/ticks"
)

// Descriptor field names, in display order.
var DescriptorFields = []string{"name", "country", "elevation", "longitude", "latitude"}

// StatsTable is column oriented: Cells[field][i] and Descriptors[field][i]
// describe Stations[i].
type StatsTable struct {
	Stations    []models.Station
	Combined    series.Combined
	Cells       map[string][]string
	Descriptors map[string][]string
}

func (s *Service) StatsTable(ctx context.Context, req Request) (*StatsTable, error) {
	timer := prometheus.NewTimer(metrics.ReportDuration.WithLabelValues("stats"))
	defer timer.ObserveDuration()

	loaded, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	bundles := make([]series.StatBundle, len(loaded))
	table := &StatsTable{
		Stations:    make([]models.Station, len(loaded)),
		Descriptors: make(map[string][]string, len(DescriptorFields)),
	}
	for _, f := range DescriptorFields {
		table.Descriptors[f] = make([]string, len(loaded))
	}
	for i, ss := range loaded {
		bundles[i] = series.Summarize(ss.series)
		table.Stations[i] = ss.station
		table.Descriptors["name"][i] = ss.station.Name
		table.Descriptors["country"][i] = ss.station.CountryCode
		table.Descriptors["elevation"][i] = fmt.Sprintf("%.0f", ss.station.Elevation)
		table.Descriptors["longitude"][i] = fmt.Sprintf("%.4f", ss.station.Longitude)
		table.Descriptors["latitude"][i] = fmt.Sprintf("%.4f", ss.station.Latitude)
	}
	table.Combined = series.Combine(bundles)
	table.Cells = table.Combined.Format()
	return table, nil
}

// Download writes the selected series outer-joined on bucket start as CSV:
// a "date" column then one column per station. Missing values are empty cells.
func (s *Service) Download(ctx context.Context, req Request, w io.Writer) error {
	timer := prometheus.NewTimer(metrics.ReportDuration.WithLabelValues("download"))
	defer timer.ObserveDuration()

	loaded, err := s.load(ctx, req)
	if err != nil {
		return err
	}

	all := make([]models.ResampledSeries, len(loaded))
	for i, ss := range loaded {
		all[i] = ss.series
	}
	joined := series.OuterJoin(all...)

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"date"}, joined.StationIDs...)); err != nil {
		return err
	}
	record := make([]string, len(joined.StationIDs)+1)
	for _, row := range joined.Rows {
		record[0] = row.Time.Format(time.DateOnly)
		for i, v := range row.Values {
			record[i+1] = ""
			if v.Valid {
				record[i+1] = strconv.FormatFloat(v.Float64, 'f', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Ticks plans axis ticks for [lo, hi] and their integer labels.
func Ticks(lo, hi float64, maxTicks int) ([]float64, []string) {
	t := ticks.Auto(lo, hi, maxTicks, true)
	return t, ticks.Labels(t)
}

// YearSpan reports the first and last bucket years across the requested
// stations, ignoring req.Years. It bounds the year-range slider.
func (s *Service) YearSpan(ctx context.Context, req Request) (int, int, error) {
	req.Years = series.YearRange{}
	loaded, err := s.load(ctx, req)
	if err != nil {
		return 0, 0, err
	}
	all := make([]models.ResampledSeries, len(loaded))
	for i, ss := range loaded {
		all[i] = ss.series
	}
	return series.YearSpan(all...)
}

// YearTicks plans slider ticks over the stations' year span.
func (s *Service) YearTicks(ctx context.Context, req Request, maxTicks int) ([]float64, []string, error) {
	lo, hi, err := s.YearSpan(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	t, labels := Ticks(float64(lo), float64(hi), maxTicks)
	return t, labels, nil
}
