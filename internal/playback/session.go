package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simon/scenecast/internal/scene"
)

type Status int

const (
	StatusRunning Status = iota
	StatusPaused
	StatusCompleted
	StatusAborted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of String. Unknown text maps to StatusFailed so
// a corrupted snapshot is never mistaken for a resumable session.
func ParseStatus(s string) Status {
	switch s {
	case "running":
		return StatusRunning
	case "paused":
		return StatusPaused
	case "completed":
		return StatusCompleted
	case "aborted":
		return StatusAborted
	default:
		return StatusFailed
	}
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted || s == StatusFailed
}

type EntryKind string

const (
	EntryInput   EntryKind = "input"
	EntryCommand EntryKind = "command" // full command text, recorded on submit
	EntryOutput  EntryKind = "output"
	EntryComment EntryKind = "comment"
	EntryMarker  EntryKind = "marker"
	EntrySkipped EntryKind = "skipped"
)

// Entry is one timestamped transcript record: a keystroke sent, an output
// chunk captured, or a narration event.
type Entry struct {
	Time time.Time `json:"time"`
	Kind EntryKind `json:"kind"`
	Data string    `json:"data"`
}

// Transcript is the append-only record of a session. The playback sender and
// the output reader append concurrently; it is sealed once the session
// reaches a terminal status.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	sealed  bool
}

// NewTranscript restores a transcript from previously captured entries.
func NewTranscript(entries []Entry) *Transcript {
	t := &Transcript{}
	t.entries = append(t.entries, entries...)
	return t
}

func (t *Transcript) Append(kind EntryKind, data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed {
		return
	}
	t.entries = append(t.entries, Entry{Time: time.Now(), Kind: kind, Data: data})
}

// Entries returns a copy of the recorded entries.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Seal makes the transcript immutable.
func (t *Transcript) Seal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sealed = true
}

// Session is one in-progress or finished playback of a scene. It is owned
// exclusively by the controller while active; persistence only serializes
// it, never mutates it.
type Session struct {
	ID            string
	SceneName     string
	SceneChecksum string
	Seed          int64
	Status        Status
	StepIndex     int
	Cursor        int
	StartedAt     time.Time
	ExitCode      int    // shell exit code, meaningful when Reason names a shell exit
	Reason        string // failure detail for StatusFailed
	Transcript    *Transcript
}

// NewSession starts a fresh session over sc with the given jitter seed.
func NewSession(sc *scene.Scene, seed int64) (*Session, error) {
	sum, err := sc.Checksum()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Session{
		ID:            sessionID(now),
		SceneName:     sc.Name,
		SceneChecksum: sum,
		Seed:          seed,
		Status:        StatusRunning,
		StartedAt:     now,
		Transcript:    &Transcript{},
	}, nil
}

// sessionID builds a sortable key: compact UTC timestamp with millisecond
// precision plus a short random suffix.
func sessionID(now time.Time) string {
	return fmt.Sprintf("%s%03d-%s",
		now.Format("20060102150405"),
		now.Nanosecond()/1e6,
		uuid.NewString()[:8])
}
