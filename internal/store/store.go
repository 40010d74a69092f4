// Package store is the record store: every entity collection is persisted as
// a single JSON document under a string key in an embedded SQLite file.
// Documents are read and written whole, so callers doing read-modify-write
// cycles must serialize themselves (the services own one mutex per document).
// Running two processes against the same data directory is unsupported.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	KeyAnnouncements      = "announcements"
	KeyStaff              = "staff"
	KeyGallery            = "gallery"
	KeyCurriculumBooks    = "curriculum_books"
	KeyPastPapers         = "past_papers"
	KeyALevelSections     = "alevel_sections"
	KeyAlumniStories      = "alumni_stories"
	KeyAlumniJoinRequests = "alumni_join_requests"
	KeyContactMessages    = "contact_messages"
	KeyUsers              = "users"
	KeyHomeConfig         = "home_config"
	KeyTrafficStats       = "traffic_stats"
	KeyLoginSecurity      = "login_security"
)

type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the record store at dsn. Any SQLite DSN works,
// including the in-memory form used by tests.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// Whole-document writes from one process; a single connection avoids
	// SQLITE_BUSY churn and keeps in-memory test databases alive.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS collections (
  name  TEXT PRIMARY KEY,
  value TEXT NOT NULL
)`); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Raw returns the stored document and whether a row exists.
func (s *Store) Raw(key string) ([]byte, bool, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM collections WHERE name = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *Store) WriteRaw(key string, value []byte) error {
	_, err := s.db.Exec(`
INSERT INTO collections (name, value) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value
`, key, string(value))
	return err
}

// Ping runs a trivial query, used by the diagnostics probes.
func (s *Store) Ping() error {
	var one int
	return s.db.Get(&one, `SELECT 1`)
}

// Read loads the document stored under key. A missing row, unreadable row,
// JSON null, or corrupt JSON never surfaces as an error: the problem is
// logged, initial is persisted back so later reads agree, and initial is
// returned.
func Read[T any](s *Store, key string, initial T) T {
	raw, found, err := s.Raw(key)
	if err != nil {
		log.Printf("store: read %s: %v", key, err)
		return initial
	}
	if !found {
		if err := Write(s, key, initial); err != nil {
			log.Printf("store: seed %s: %v", key, err)
		}
		return initial
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil || string(raw) == "null" {
		log.Printf("store: corruption detected for %s, resetting", key)
		if err := Write(s, key, initial); err != nil {
			log.Printf("store: reset %s: %v", key, err)
		}
		return initial
	}
	return value
}

// Write serializes the whole document and replaces whatever is stored.
func Write[T any](s *Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.WriteRaw(key, raw)
}
