// Package store keeps a catalog of analyzed videos in SQLite: one row per
// match log, so past runs can be listed without re-reading the log files.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fgc-tools/hudscan/pkg/matchlog"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id             TEXT PRIMARY KEY,
	source_path    TEXT NOT NULL,
	start_seconds  REAL NOT NULL,
	rounds         INTEGER NOT NULL,
	frames         INTEGER NOT NULL,
	log_path       TEXT NOT NULL,
	created_at     TEXT NOT NULL
);
`

// MatchRecord is one catalog row.
type MatchRecord struct {
	ID           string
	SourcePath   string
	StartSeconds float64
	Rounds       int
	Frames       int
	LogPath      string
	CreatedAt    time.Time
}

// Store manages the match catalog.
type Store struct {
	db *sql.DB
}

// NewStore opens the catalog database, creating the schema if needed.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save catalogs an analyzed match and the path its log was written to.
func (s *Store) Save(m *matchlog.Match, logPath string) (MatchRecord, error) {
	if m == nil {
		return MatchRecord{}, errors.New("nil match")
	}
	rec := MatchRecord{
		ID:           uuid.New().String(),
		SourcePath:   m.Source.FilePath,
		StartSeconds: m.Source.StartSeconds,
		Rounds:       len(m.Rounds),
		Frames:       m.FrameCount(),
		LogPath:      logPath,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO matches (id, source_path, start_seconds, rounds, frames, log_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourcePath, rec.StartSeconds, rec.Rounds, rec.Frames, rec.LogPath,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return MatchRecord{}, fmt.Errorf("failed to insert match: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit catalog rows, newest first.
func (s *Store) Recent(limit int) ([]MatchRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, source_path, start_seconds, rounds, frames, log_path, created_at
		 FROM matches ORDER BY rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		var createdStr string
		if err := rows.Scan(&rec.ID, &rec.SourcePath, &rec.StartSeconds,
			&rec.Rounds, &rec.Frames, &rec.LogPath, &createdStr); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
