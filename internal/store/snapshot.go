// Package store persists session progress: JSON snapshot files for full
// session state and a SQLite index for fast listing. Snapshot writes follow
// the write-to-temp-then-rename discipline so a crash mid-write never
// corrupts the last good snapshot.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/simon/scenecast/internal/playback"
)

// SnapshotVersion is the snapshot file schema.
const SnapshotVersion = 1

var (
	// ErrSnapshotWrite means a snapshot could not be persisted.
	ErrSnapshotWrite = errors.New("snapshot write failed")
	// ErrSessionNotFound means no snapshot exists for the given id.
	ErrSessionNotFound = errors.New("session not found")
)

// Snapshot is the on-disk form of a session.
type Snapshot struct {
	Version       int              `json:"version"`
	ID            string           `json:"id"`
	SceneName     string           `json:"scene"`
	SceneChecksum string           `json:"scene_checksum"`
	Seed          int64            `json:"seed"`
	Status        string           `json:"status"`
	StepIndex     int              `json:"step_index"`
	Cursor        int              `json:"cursor"`
	StartedAt     time.Time        `json:"started_at"`
	ExitCode      int              `json:"exit_code,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Transcript    []playback.Entry `json:"transcript"`
}

// SnapshotStore writes and reads snapshot files under one directory.
type SnapshotStore struct {
	dir string
}

func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

// Path returns the snapshot file for a session id.
func (s *SnapshotStore) Path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Write persists the session atomically.
func (s *SnapshotStore) Write(sess *playback.Session) error {
	snap := Snapshot{
		Version:       SnapshotVersion,
		ID:            sess.ID,
		SceneName:     sess.SceneName,
		SceneChecksum: sess.SceneChecksum,
		Seed:          sess.Seed,
		Status:        sess.Status.String(),
		StepIndex:     sess.StepIndex,
		Cursor:        sess.Cursor,
		StartedAt:     sess.StartedAt,
		ExitCode:      sess.ExitCode,
		Reason:        sess.Reason,
		Transcript:    sess.Transcript.Entries(),
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+sess.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	if err := os.Rename(tmpName, s.Path(sess.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	return nil
}

// Read loads a snapshot by session id.
func (s *SnapshotStore) Read(id string) (*Snapshot, error) {
	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("could not read snapshot %s: %w", id, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("could not parse snapshot %s: %w", id, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d in %s", snap.Version, id)
	}
	return &snap, nil
}

// Remove deletes a snapshot file.
func (s *SnapshotStore) Remove(id string) error {
	if err := os.Remove(s.Path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return fmt.Errorf("could not remove snapshot %s: %w", id, err)
	}
	return nil
}

// Restore rebuilds a live session from a snapshot.
func (snap *Snapshot) Restore() *playback.Session {
	return &playback.Session{
		ID:            snap.ID,
		SceneName:     snap.SceneName,
		SceneChecksum: snap.SceneChecksum,
		Seed:          snap.Seed,
		Status:        playback.ParseStatus(snap.Status),
		StepIndex:     snap.StepIndex,
		Cursor:        snap.Cursor,
		StartedAt:     snap.StartedAt,
		ExitCode:      snap.ExitCode,
		Reason:        snap.Reason,
		Transcript:    playback.NewTranscript(snap.Transcript),
	}
}
