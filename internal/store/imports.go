package store

import (
	"database/sql"
	"time"
)

// ImportRun audits one load of station series into the archive.
type ImportRun struct {
	ID               int64
	StartedAt        time.Time
	FinishedAt       sql.NullTime
	Source           string
	StationsSeen     sql.NullInt64
	StationsImported sql.NullInt64
	StationsFailed   sql.NullInt64
	SamplesStored    sql.NullInt64
	Success          bool
	ErrorMessage     sql.NullString
}

// StartImportRun creates a new import run record and returns it.
func (s *Store) StartImportRun(source string) (*ImportRun, error) {
	run := &ImportRun{
		StartedAt: time.Now().UTC(),
		Source:    source,
	}

	result, err := s.db.Exec(`
		INSERT INTO import_runs (started_at, source, success)
		VALUES (?, ?, FALSE)
	`, run.StartedAt, run.Source)
	if err != nil {
		return nil, err
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return run, nil
}

// CompleteImportRun updates the import run with results.
func (s *Store) CompleteImportRun(run *ImportRun) error {
	if run == nil {
		return nil
	}

	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	_, err := s.db.Exec(`
		UPDATE import_runs SET
			finished_at = ?,
			stations_seen = ?,
			stations_imported = ?,
			stations_failed = ?,
			samples_stored = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.StationsSeen, run.StationsImported, run.StationsFailed,
		run.SamplesStored, run.Success, run.ErrorMessage, run.ID)
	return err
}

// RecentImportRuns returns the latest import runs, newest first.
func (s *Store) RecentImportRuns(limit int) ([]ImportRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, source, stations_seen, stations_imported,
			   stations_failed, samples_stored, success, error_message
		FROM import_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ImportRun
	for rows.Next() {
		var r ImportRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Source, &r.StationsSeen,
			&r.StationsImported, &r.StationsFailed, &r.SamplesStored, &r.Success, &r.ErrorMessage); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
