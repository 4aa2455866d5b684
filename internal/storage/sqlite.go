package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rfpforge/rfpforge/internal/domain"
)

// SQLiteSessionStore keeps session snapshots in an embedded database,
// mirroring the cloud table's single-key shape.
type SQLiteSessionStore struct {
	db *sql.DB
}

// NewSQLiteSessionStore opens (or creates) the database and its schema.
func NewSQLiteSessionStore(dbPath string) (*SQLiteSessionStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteSessionStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// PutSession replaces the full snapshot for a session id.
func (s *SQLiteSessionStore) PutSession(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	if snap.UpdatedAt == "" {
		snap.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return storageErr("put_session", sessionID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (session_id, data, updated_at)
		VALUES (?, ?, ?)
	`, sessionID, string(data), snap.UpdatedAt)
	if err != nil {
		return storageErr("put_session", sessionID, err)
	}

	return nil
}

// GetSession retrieves the snapshot for a session id.
func (s *SQLiteSessionStore) GetSession(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM sessions WHERE session_id = ?
	`, sessionID).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, storageErr("get_session", sessionID, err)
	}

	snap := &domain.Snapshot{}
	if err := json.Unmarshal([]byte(data), snap); err != nil {
		return nil, storageErr("get_session", sessionID, err)
	}
	snap.SessionID = sessionID

	return snap, nil
}

// Close closes the underlying database.
func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}
