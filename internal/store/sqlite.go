package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lox/rainview/internal/metrics"
	"github.com/lox/rainview/internal/models"
)

// Store is the SQLite-backed station catalog and daily rainfall archive.
// Series are written once by the import step and only read afterwards.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertStation(st models.Station) error {
	_, err := s.db.Exec(`
		INSERT INTO stations (station_id, name, country_code, elevation, longitude, latitude, length_years, missing_fraction)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id) DO UPDATE SET
			name = excluded.name,
			country_code = excluded.country_code,
			elevation = excluded.elevation,
			longitude = excluded.longitude,
			latitude = excluded.latitude,
			length_years = excluded.length_years,
			missing_fraction = excluded.missing_fraction
	`, st.StationID, st.Name, st.CountryCode, st.Elevation, st.Longitude, st.Latitude, st.LengthYears, st.MissingFraction)
	return err
}

// UpdateStationStats records the catalog record length and missing share for a station.
func (s *Store) UpdateStationStats(stationID string, lengthYears, missingFraction float64) error {
	res, err := s.db.Exec(`
		UPDATE stations SET length_years = ?, missing_fraction = ? WHERE station_id = ?
	`, lengthYears, missingFraction, stationID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("station %s: %w", stationID, models.ErrNotFound)
	}
	return nil
}

const stationColumns = `station_id, name, country_code, elevation, longitude, latitude, length_years, missing_fraction`

func scanStation(row interface{ Scan(...any) error }) (models.Station, error) {
	var st models.Station
	var cc sql.NullString
	err := row.Scan(&st.StationID, &st.Name, &cc, &st.Elevation, &st.Longitude, &st.Latitude, &st.LengthYears, &st.MissingFraction)
	st.CountryCode = cc.String
	return st, err
}

// StationMeta returns the catalog entry for stationID, or ErrNotFound.
func (s *Store) StationMeta(stationID string) (models.Station, error) {
	st, err := scanStation(s.db.QueryRow(`SELECT `+stationColumns+` FROM stations WHERE station_id = ?`, stationID))
	if errors.Is(err, sql.ErrNoRows) {
		metrics.StoreLookups.WithLabelValues("station", "not_found").Inc()
		return models.Station{}, fmt.Errorf("station %s: %w", stationID, models.ErrNotFound)
	}
	if err != nil {
		metrics.StoreLookups.WithLabelValues("station", "error").Inc()
		return models.Station{}, fmt.Errorf("station %s: %w", stationID, err)
	}
	metrics.StoreLookups.WithLabelValues("station", "ok").Inc()
	return st, nil
}

// AllStations returns every station ordered by identifier.
func (s *Store) AllStations() ([]models.Station, error) {
	rows, err := s.db.Query(`SELECT ` + stationColumns + ` FROM stations ORDER BY station_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// ReplaceSeries overwrites the stored daily series for a station in one transaction.
func (s *Store) ReplaceSeries(raw models.RawSeries) error {
	if err := raw.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM daily_rainfall WHERE station_id = ?`, raw.StationID); err != nil {
		return fmt.Errorf("clear series %s: %w", raw.StationID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO daily_rainfall (station_id, day, rainfall_mm) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, smp := range raw.Samples {
		if _, err := stmt.Exec(raw.StationID, smp.Date.Format(time.DateOnly), smp.Rainfall); err != nil {
			return fmt.Errorf("insert %s %s: %w", raw.StationID, smp.Date.Format(time.DateOnly), err)
		}
	}

	return tx.Commit()
}

// RawSeries loads the daily series for a station. Unknown stations, stations
// without samples and unreadable rows all report ErrNotFound.
func (s *Store) RawSeries(stationID string) (models.RawSeries, error) {
	raw := models.RawSeries{StationID: stationID}

	rows, err := s.db.Query(`
		SELECT day, rainfall_mm
		FROM daily_rainfall
		WHERE station_id = ?
		ORDER BY day ASC
	`, stationID)
	if err != nil {
		metrics.StoreLookups.WithLabelValues("series", "error").Inc()
		return raw, err
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		var smp models.Sample
		if err := rows.Scan(&day, &smp.Rainfall); err != nil {
			metrics.StoreLookups.WithLabelValues("series", "corrupt").Inc()
			return models.RawSeries{StationID: stationID}, fmt.Errorf("series %s: %v: %w", stationID, err, models.ErrNotFound)
		}
		smp.Date, err = time.Parse(time.DateOnly, day)
		if err != nil {
			metrics.StoreLookups.WithLabelValues("series", "corrupt").Inc()
			return models.RawSeries{StationID: stationID}, fmt.Errorf("series %s: bad day %q: %w", stationID, day, models.ErrNotFound)
		}
		raw.Samples = append(raw.Samples, smp)
	}
	if err := rows.Err(); err != nil {
		metrics.StoreLookups.WithLabelValues("series", "error").Inc()
		return raw, err
	}

	if len(raw.Samples) == 0 {
		metrics.StoreLookups.WithLabelValues("series", "not_found").Inc()
		return raw, fmt.Errorf("series %s: %w", stationID, models.ErrNotFound)
	}
	metrics.StoreLookups.WithLabelValues("series", "ok").Inc()
	return raw, nil
}

// SampleCount returns the number of stored daily samples for a station.
func (s *Store) SampleCount(stationID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM daily_rainfall WHERE station_id = ?`, stationID).Scan(&n)
	return n, err
}
