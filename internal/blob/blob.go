// Package blob holds large binary payloads (base64 data URIs for images and
// PDFs) out of the record store, keyed by the owning entity's id. It lives in
// its own SQLite file so oversized payloads never bloat the collection
// documents.
package blob

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Placeholder is the sentinel written into an entity's payload field once the
// real content has been moved here.
const Placeholder = "stored"

type Store struct {
	db *sqlx.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS blobs (
  id      TEXT PRIMARY KEY,
  payload TEXT NOT NULL
)`); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the payload stored under id.
func (s *Store) Save(ctx context.Context, id, payload string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO blobs (id, payload) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET payload = excluded.payload
`, id, payload)
	return err
}

// Get returns the payload for id, or "" with a nil error when absent.
// A miss means "fall back to the placeholder", not a failure.
func (s *Store) Get(ctx context.Context, id string) (string, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM blobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return payload, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE id = ?`, id)
	return err
}

// Ping runs a trivial query, used by the diagnostics probes.
func (s *Store) Ping() error {
	var one int
	return s.db.Get(&one, `SELECT 1`)
}
