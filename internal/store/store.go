// Package store persists normalized events and crash records in a local
// SQLite database and answers the time-window correlation query.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hermes-log/collector/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    timestamp TEXT NOT NULL,
    os TEXT NOT NULL,
    log_name TEXT NOT NULL,
    category TEXT NOT NULL,
    provider TEXT NOT NULL,
    event_id INTEGER,
    severity TEXT NOT NULL,
    message TEXT NOT NULL,
    imported INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
CREATE INDEX IF NOT EXISTS idx_events_severity ON events(severity);
CREATE INDEX IF NOT EXISTS idx_events_event_id ON events(event_id);

CREATE TABLE IF NOT EXISTS crashes (
    id TEXT PRIMARY KEY,
    timestamp TEXT NOT NULL,
    os TEXT NOT NULL,
    source TEXT NOT NULL,
    crash_type TEXT NOT NULL,
    code TEXT,
    summary TEXT NOT NULL,
    suspected_component TEXT,
    raw_path TEXT,
    imported INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_crashes_timestamp ON crashes(timestamp);
CREATE INDEX IF NOT EXISTS idx_crashes_os ON crashes(os);
`

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the events database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEvents upserts events by id in a single transaction. A re-collected
// event replaces the stored row but keeps its imported flag.
func (s *Store) SaveEvents(events []types.NormalizedEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO events (id, timestamp, os, log_name, category, provider, event_id, severity, message, imported)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			timestamp=excluded.timestamp,
			os=excluded.os,
			log_name=excluded.log_name,
			category=excluded.category,
			provider=excluded.provider,
			event_id=excluded.event_id,
			severity=excluded.severity,
			message=excluded.message`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		_, err := stmt.Exec(ev.ID, ev.Timestamp, string(ev.OS), ev.LogName, ev.Category,
			ev.Provider, nullUint32(ev.EventID), ev.Severity, ev.Message, boolInt(ev.Imported))
		if err != nil {
			return fmt.Errorf("upsert event %s: %w", ev.ID, err)
		}
	}
	return tx.Commit()
}

// Events returns the most recent stored events, newest first.
func (s *Store) Events(limit int) ([]types.NormalizedEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, os, log_name, category, provider, event_id, severity, message, imported
		FROM events
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// SaveCrashes upserts crash records by id in a single transaction.
func (s *Store) SaveCrashes(crashes []types.CrashRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO crashes (id, timestamp, os, source, crash_type, code, summary, suspected_component, raw_path, imported)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			timestamp=excluded.timestamp,
			os=excluded.os,
			source=excluded.source,
			crash_type=excluded.crash_type,
			code=excluded.code,
			summary=excluded.summary,
			suspected_component=excluded.suspected_component,
			raw_path=excluded.raw_path,
			imported=excluded.imported`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, cr := range crashes {
		_, err := stmt.Exec(cr.ID, cr.Timestamp, string(cr.OS), cr.Source, cr.CrashType,
			nullString(cr.Code), cr.Summary, nullString(cr.SuspectedComponent),
			nullString(cr.RawPath), boolInt(cr.Imported))
		if err != nil {
			return fmt.Errorf("upsert crash %s: %w", cr.ID, err)
		}
	}
	return tx.Commit()
}

// Crashes returns the most recent stored crash records, newest first.
func (s *Store) Crashes(limit int) ([]types.CrashRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, os, source, crash_type, code, summary, suspected_component, raw_path, imported
		FROM crashes
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query crashes: %w", err)
	}
	defer rows.Close()

	var crashes []types.CrashRecord
	for rows.Next() {
		var (
			cr                       types.CrashRecord
			osName                   string
			code, component, rawPath sql.NullString
			imported                 int64
		)
		err := rows.Scan(&cr.ID, &cr.Timestamp, &osName, &cr.Source, &cr.CrashType,
			&code, &cr.Summary, &component, &rawPath, &imported)
		if err != nil {
			return nil, fmt.Errorf("scan crash row: %w", err)
		}
		cr.OS = types.SupportedOS(osName)
		cr.Code = code.String
		cr.SuspectedComponent = component.String
		cr.RawPath = rawPath.String
		cr.Imported = imported != 0
		crashes = append(crashes, cr)
	}
	return crashes, rows.Err()
}

// PruneEventsBefore deletes events older than the cutoff timestamp
// (RFC 3339) and returns how many rows were removed.
func (s *Store) PruneEventsBefore(cutoff string) (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM events WHERE julianday(timestamp) < julianday(?)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return res.RowsAffected()
}

// CrashNeighbors returns events on the same OS as the given crash whose
// timestamps fall within windowMinutes of it, closest first and newest
// first among ties. An unknown crash id yields an empty result.
func (s *Store) CrashNeighbors(crashID string, windowMinutes, limit int) ([]types.NormalizedEvent, error) {
	rows, err := s.db.Query(`
		SELECT e.id, e.timestamp, e.os, e.log_name, e.category, e.provider, e.event_id, e.severity, e.message, e.imported
		FROM events e
		JOIN crashes c ON c.id = ?
		WHERE e.os = c.os
		  AND ABS((julianday(e.timestamp) - julianday(c.timestamp)) * 24 * 60) <= ?
		ORDER BY ABS((julianday(e.timestamp) - julianday(c.timestamp)) * 24 * 60) ASC, e.timestamp DESC
		LIMIT ?`, crashID, windowMinutes, limit)
	if err != nil {
		return nil, fmt.Errorf("query correlated events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]types.NormalizedEvent, error) {
	var events []types.NormalizedEvent
	for rows.Next() {
		var (
			ev       types.NormalizedEvent
			osName   string
			eventID  sql.NullInt64
			imported int64
		)
		err := rows.Scan(&ev.ID, &ev.Timestamp, &osName, &ev.LogName, &ev.Category,
			&ev.Provider, &eventID, &ev.Severity, &ev.Message, &imported)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		ev.OS = types.SupportedOS(osName)
		if eventID.Valid {
			ev.EventID = types.Uint32(uint32(eventID.Int64))
		}
		ev.Imported = imported != 0
		events = append(events, ev)
	}
	return events, rows.Err()
}

func nullUint32(v *uint32) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
