package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS stations (
    station_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    country_code TEXT,
    elevation REAL,
    longitude REAL,
    latitude REAL
);

CREATE TABLE IF NOT EXISTS daily_rainfall (
    station_id TEXT NOT NULL REFERENCES stations(station_id),
    day TEXT NOT NULL,
    rainfall_mm REAL,
    PRIMARY KEY (station_id, day)
);
`,
	},
	{
		Version:     2,
		Description: "Add catalog stats to stations",
		SQL: `
ALTER TABLE stations ADD COLUMN length_years REAL;
ALTER TABLE stations ADD COLUMN missing_fraction REAL;
`,
	},
	{
		Version:     3,
		Description: "Add import_runs table for load auditing",
		SQL: `
CREATE TABLE IF NOT EXISTS import_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at DATETIME NOT NULL,
    finished_at DATETIME,
    source TEXT NOT NULL,
    stations_seen INTEGER,
    stations_imported INTEGER,
    stations_failed INTEGER,
    samples_stored INTEGER,
    success BOOLEAN NOT NULL DEFAULT FALSE,
    error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_import_runs_started ON import_runs(started_at);
`,
	},
}

// Migrate brings the archive schema up to the latest version. Each schema
// version is applied and recorded in its own transaction.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	pending, err := s.pendingMigrations()
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := s.applyMigration(m); err != nil {
			return err
		}
		log.Printf("store: archive schema now at v%d (%s)", m.Version, m.Description)
	}
	return nil
}

// pendingMigrations returns the migrations not yet recorded, in version order.
func (s *Store) pendingMigrations() ([]migration, error) {
	rows, err := s.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema versions: %w", err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("read schema versions: %w", err)
		}
		done[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read schema versions: %w", err)
	}

	var pending []migration
	for _, m := range migrations {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

func (s *Store) applyMigration(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("schema v%d: begin: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("schema v%d (%s): %w", m.Version, m.Description, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Description, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("schema v%d: record: %w", m.Version, err)
	}
	return tx.Commit()
}

// MigrationVersion reports the newest schema version applied to the archive, or 0 for a fresh file.
func (s *Store) MigrationVersion() (int, error) {
	var version sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}
