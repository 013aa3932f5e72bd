package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lox/rainview/internal/metrics"
	"github.com/lox/rainview/internal/models"
	"github.com/lox/rainview/internal/store"
)

// Source yields clean per-station daily series, typically a staging archive
// written by the raw-format converter.
type Source interface {
	AllStations() ([]models.Station, error)
	RawSeries(stationID string) (models.RawSeries, error)
}

// Sink is the serving archive.
type Sink interface {
	UpsertStation(st models.Station) error
	ReplaceSeries(raw models.RawSeries) error
	UpdateStationStats(stationID string, lengthYears, missingFraction float64) error
	StartImportRun(source string) (*store.ImportRun, error)
	CompleteImportRun(run *store.ImportRun) error
}

type ItemError struct {
	StationID string
	Err       error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.StationID, e.Err)
}

// Report collects the outcome of one import. A failed station never stops the
// batch; it is listed in Failed.
type Report struct {
	Seen     int
	Imported int
	Samples  int
	Failed   []ItemError
	Flags    map[string]int
}

func (r *Report) Summary() string {
	s := fmt.Sprintf("%d/%d stations imported, %d samples", r.Imported, r.Seen, r.Samples)
	if len(r.Failed) > 0 {
		ids := make([]string, len(r.Failed))
		for i, f := range r.Failed {
			ids[i] = f.StationID
		}
		s += fmt.Sprintf(", %d failed (%s)", len(r.Failed), strings.Join(ids, ", "))
	}
	if flags := FlagsToJSON(r.Flags); flags != "" {
		s += ", flags " + flags
	}
	return s
}

type Importer struct {
	source     Source
	sink       Sink
	sourceName string
	newBackOff func() backoff.BackOff
}

func NewImporter(source Source, sink Sink, sourceName string) *Importer {
	return &Importer{
		source:     source,
		sink:       sink,
		sourceName: sourceName,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 30 * time.Second
			return bo
		},
	}
}

// SetBackOff replaces the retry policy used for source reads.
func (im *Importer) SetBackOff(fn func() backoff.BackOff) {
	im.newBackOff = fn
}

// Run copies every source station into the sink. The returned error is only
// for failures that prevent the import as a whole; per-station problems are
// in the report.
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	run, err := im.sink.StartImportRun(im.sourceName)
	if err != nil {
		return nil, fmt.Errorf("start import run: %w", err)
	}

	rep := &Report{Flags: make(map[string]int)}
	stations, err := im.listStations(ctx)
	if err != nil {
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		if cerr := im.sink.CompleteImportRun(run); cerr != nil {
			log.Printf("ingest: complete run: %v", cerr)
		}
		return nil, fmt.Errorf("list stations: %w", err)
	}
	rep.Seen = len(stations)
	log.Printf("ingest: importing %d stations from %s", len(stations), im.sourceName)

	for _, st := range stations {
		if err := ctx.Err(); err != nil {
			rep.Failed = append(rep.Failed, ItemError{StationID: st.StationID, Err: err})
			metrics.StationsImported.WithLabelValues("failed").Inc()
			continue
		}
		n, err := im.importStation(ctx, st, rep.Flags)
		if err != nil {
			log.Printf("ingest: %s: %v", st.StationID, err)
			rep.Failed = append(rep.Failed, ItemError{StationID: st.StationID, Err: err})
			metrics.StationsImported.WithLabelValues("failed").Inc()
			continue
		}
		rep.Imported++
		rep.Samples += n
		metrics.StationsImported.WithLabelValues("ok").Inc()
	}

	run.StationsSeen = sql.NullInt64{Int64: int64(rep.Seen), Valid: true}
	run.StationsImported = sql.NullInt64{Int64: int64(rep.Imported), Valid: true}
	run.StationsFailed = sql.NullInt64{Int64: int64(len(rep.Failed)), Valid: true}
	run.SamplesStored = sql.NullInt64{Int64: int64(rep.Samples), Valid: true}
	run.Success = len(rep.Failed) == 0
	if !run.Success {
		run.ErrorMessage = sql.NullString{String: rep.Summary(), Valid: true}
	}
	if err := im.sink.CompleteImportRun(run); err != nil {
		log.Printf("ingest: complete run: %v", err)
	}

	log.Printf("ingest: %s", rep.Summary())
	return rep, nil
}

func (im *Importer) listStations(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	err := im.retry(ctx, func() error {
		var err error
		stations, err = im.source.AllStations()
		return err
	})
	return stations, err
}

func (im *Importer) importStation(ctx context.Context, st models.Station, flags map[string]int) (int, error) {
	var raw models.RawSeries
	err := im.retry(ctx, func() error {
		var err error
		raw, err = im.source.RawSeries(st.StationID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read series: %w", err)
	}

	cleaned, found := CleanSeries(raw)
	if err := cleaned.Validate(); err != nil {
		return 0, err
	}
	// Catalog stats are written last so a station only carries them once its series is stored.
	st.LengthYears = sql.NullFloat64{}
	st.MissingFraction = sql.NullFloat64{}
	if err := im.sink.UpsertStation(st); err != nil {
		return 0, fmt.Errorf("upsert station: %w", err)
	}
	if err := im.sink.ReplaceSeries(cleaned); err != nil {
		return 0, fmt.Errorf("store series: %w", err)
	}
	lengthYears, missing := CatalogStats(cleaned)
	if err := im.sink.UpdateStationStats(st.StationID, lengthYears, missing); err != nil {
		return 0, fmt.Errorf("station stats: %w", err)
	}
	for k, v := range found {
		flags[k] += v
	}
	return len(cleaned.Samples), nil
}

// retry runs op with backoff. NotFound and InvalidArgument are permanent.
func (im *Importer) retry(ctx context.Context, op func() error) error {
	operation := func() error {
		err := op()
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidArgument) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(im.newBackOff(), ctx))
}
