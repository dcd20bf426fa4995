package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/simon/scenecast/internal/playback"
	"github.com/simon/scenecast/internal/scene"
	"github.com/simon/scenecast/internal/store"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		in   string
		idx  int
		ok   bool
		name string
	}{
		{"@", 0, true, "bare at"},
		{"@1", 0, true, "one"},
		{"@5", 4, true, "five"},
		{"@0", 0, false, "zero"},
		{"@abc", 0, false, "non-numeric"},
		{"abc", 0, false, "plain id"},
		{"", 0, false, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := parseIndex(tt.in)
			if ok != tt.ok || (ok && idx != tt.idx) {
				t.Errorf("parseIndex(%q) = %d, %v; want %d, %v", tt.in, idx, ok, tt.idx, tt.ok)
			}
		})
	}
}

func TestResolveReference(t *testing.T) {
	ids := []string{"newest", "middle", "oldest"}

	tests := []struct {
		ref  string
		want string
		err  bool
	}{
		{"@", "newest", false},
		{"@2", "middle", false},
		{"@3", "oldest", false},
		{"@4", "", true},
		{"middle", "middle", false},
		{"missing", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolveReference(tt.ref, ids)
			if tt.err {
				if !errors.Is(err, store.ErrSessionNotFound) {
					t.Errorf("resolveReference(%q) err = %v, want ErrSessionNotFound", tt.ref, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("resolveReference(%q) = %q, %v; want %q", tt.ref, got, err, tt.want)
			}
		})
	}
}

func TestResolveReferencesStopsAtFirstError(t *testing.T) {
	ids := []string{"a", "b"}
	if _, err := resolveReferences([]string{"@1", "@9"}, ids); err == nil {
		t.Error("expected error for out-of-range reference")
	}
	got, err := resolveReferences([]string{"@2", "a"}, ids)
	if err != nil || len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("resolveReferences() = %v, %v", got, err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{playback.ErrAborted, 2},
		{fmt.Errorf("wrapped: %w", playback.ErrAborted), 2},
		{scene.ErrNotFound, 3},
		{store.ErrSessionNotFound, 3},
		{scene.ErrInvalidFormat, 4},
		{errors.New("anything else"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNeedsNewline(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"abc\n", false},
		{"abc", true},
	}
	for _, tt := range tests {
		if got := needsNewline(tt.in); got != tt.want {
			t.Errorf("needsNewline(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
