package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Station struct {
	StationID       string
	Name            string
	CountryCode     string
	Elevation       float64
	Longitude       float64
	Latitude        float64
	LengthYears     sql.NullFloat64
	MissingFraction sql.NullFloat64
}

// Label is the display text used by station pickers, e.g. "DE BILT (NLD)".
func (s Station) Label() string {
	name := strings.TrimSpace(s.Name)
	if s.CountryCode == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, s.CountryCode)
}

// CatalogLabel extends Label with record length and missing share when known.
func (s Station) CatalogLabel() string {
	if !s.LengthYears.Valid || !s.MissingFraction.Valid {
		return s.Label()
	}
	return fmt.Sprintf("%s (%.0fy with m=%.3f%%)", s.Label(), s.LengthYears.Float64, s.MissingFraction.Float64*100)
}

// Sample is one daily rainfall reading in millimetres. Rainfall.Valid=false means missing.
type Sample struct {
	Date     time.Time
	Rainfall sql.NullFloat64
}

type RawSeries struct {
	StationID string
	Samples   []Sample
}

// Validate checks that sample dates fall on strictly increasing calendar days.
// Two readings on the same day are a duplicate whatever their clock time.
func (r RawSeries) Validate() error {
	for i := 1; i < len(r.Samples); i++ {
		prev, cur := Day(r.Samples[i-1].Date), Day(r.Samples[i].Date)
		if !cur.After(prev) {
			return fmt.Errorf("%w: station %s: sample %d (%s) not after %s", ErrInvalidArgument,
				r.StationID, i, cur.Format(time.DateOnly), prev.Format(time.DateOnly))
		}
	}
	return nil
}

// Day strips the clock and zone from t, keeping its calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Point is one bucket of a resampled series, keyed by bucket start.
type Point struct {
	Time  time.Time
	Value sql.NullFloat64
}

type ResampledSeries struct {
	StationID string
	Frequency Frequency
	Summary   Summary
	Points    []Point
}

// Valid returns the number of non-missing points.
func (r ResampledSeries) Valid() int {
	n := 0
	for _, p := range r.Points {
		if p.Value.Valid {
			n++
		}
	}
	return n
}

func Value(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

var Missing = sql.NullFloat64{}
