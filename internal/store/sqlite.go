package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/journal/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrNoSession is returned when nobody is logged in
var ErrNoSession = errors.New("not logged in: run 'journal login' first")

// Store keeps the auth session and the last fetched entries on disk
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection serialises snapshot writes from concurrent requests
	db.SetMaxOpenConns(1)

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession replaces the stored session. The expiry is taken from the
// token's exp claim when the token is a JWT.
func (s *Store) SaveSession(session domain.Session) error {
	if session.ExpiresAt == nil {
		session.ExpiresAt = TokenExpiry(session.AccessToken)
	}
	if session.SavedAt.IsZero() {
		session.SavedAt = time.Now()
	}
	if session.TokenType == "" {
		session.TokenType = "bearer"
	}

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO sessions (id, access_token, token_type, email, saved_at, expires_at) VALUES (1, ?, ?, ?, ?, ?)",
		session.AccessToken, session.TokenType, session.Email, session.SavedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Session returns the stored session or ErrNoSession
func (s *Store) Session() (*domain.Session, error) {
	var session domain.Session
	var expires sql.NullTime
	err := s.db.QueryRow(
		"SELECT access_token, token_type, email, saved_at, expires_at FROM sessions WHERE id = 1",
	).Scan(&session.AccessToken, &session.TokenType, &session.Email, &session.SavedAt, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if expires.Valid {
		session.ExpiresAt = &expires.Time
	}
	return &session, nil
}

// ClearSession removes the stored session
func (s *Store) ClearSession() error {
	if _, err := s.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ReplaceSnapshot stores entries as the latest known list, keeping their order
func (s *Store) ReplaceSnapshot(entries []domain.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entry_snapshot"); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO entry_snapshot (id, position, created_at, payload, fetched_at) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("prepare snapshot: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entry %s: %w", e.ID, err)
		}
		if _, err := stmt.Exec(string(e.ID), i, e.CreatedAt, string(payload), now); err != nil {
			return fmt.Errorf("insert snapshot entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Snapshot returns the stored entries in the order they were fetched
func (s *Store) Snapshot() ([]domain.Entry, error) {
	rows, err := s.db.Query("SELECT payload FROM entry_snapshot ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list snapshot: %w", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan snapshot entry: %w", err)
		}
		var e domain.Entry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode snapshot entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshot: %w", err)
	}

	return entries, nil
}

// SnapshotEntry finds one entry in the snapshot by exact id, or by an
// id prefix that matches a single entry.
func (s *Store) SnapshotEntry(idPrefix string) (*domain.Entry, error) {
	entries, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return domain.FindEntry(entries, idPrefix)
}
