package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id            TEXT PRIMARY KEY,
    scene         TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT '',
    snapshot_path TEXT NOT NULL DEFAULT '',
    started_at    TIMESTAMP,
    updated_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Index wraps a SQLite database listing recorded sessions so the CLI and
// TUI can enumerate them without parsing every snapshot file.
type Index struct {
	db *sql.DB
}

// OpenIndex creates or opens the session index at dbPath.
func OpenIndex(dbPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode for safe concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Index{db: db}, nil
}

// Close closes the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Record upserts a session's listing row. Called alongside every snapshot
// write, so the index tracks the snapshot's status.
func (ix *Index) Record(id, sceneName, status, snapshotPath string, startedAt time.Time) error {
	_, err := ix.db.Exec(`
		INSERT INTO sessions (id, scene, status, snapshot_path, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			snapshot_path = excluded.snapshot_path,
			updated_at = CURRENT_TIMESTAMP
	`, id, sceneName, status, snapshotPath, startedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// SessionInfo is one row of the session listing.
type SessionInfo struct {
	ID           string
	Scene        string
	Status       string
	SnapshotPath string
	StartedAt    time.Time
}

// List returns sessions newest-first. A non-positive limit means all.
func (ix *Index) List(limit int) ([]SessionInfo, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := ix.db.Query(`
		SELECT id, scene, status, snapshot_path, started_at
		FROM sessions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var startedAt string
		if err := rows.Scan(&info.ID, &info.Scene, &info.Status, &info.SnapshotPath, &startedAt); err != nil {
			return nil, err
		}
		info.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		result = append(result, info)
	}
	return result, rows.Err()
}

// Resumable returns non-terminal sessions (paused or interrupted runs),
// newest-first.
func (ix *Index) Resumable(limit int) ([]SessionInfo, error) {
	all, err := ix.List(0)
	if err != nil {
		return nil, err
	}
	var result []SessionInfo
	for _, info := range all {
		if info.Status == "paused" || info.Status == "running" {
			result = append(result, info)
			if limit > 0 && len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// Delete removes a session row.
func (ix *Index) Delete(id string) error {
	res, err := ix.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}
