package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/simon/scenecast/internal/playback"
	"github.com/simon/scenecast/internal/scene"
	"github.com/simon/scenecast/internal/store"
)

// resolveReference maps a session reference to a session id. References are
// either a literal id, "@" for the most recent session, or "@N" for the
// N-th most recent (1-based). ids must be ordered newest first.
func resolveReference(ref string, ids []string) (string, error) {
	if idx, ok := parseIndex(ref); ok {
		if idx >= len(ids) {
			return "", fmt.Errorf("%w: reference %s out of range (%d sessions)",
				store.ErrSessionNotFound, ref, len(ids))
		}
		return ids[idx], nil
	}
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %s", store.ErrSessionNotFound, ref)
}

// parseIndex parses "@" (index 0) and "@N" (index N-1).
func parseIndex(s string) (int, bool) {
	if s == "@" {
		return 0, true
	}
	rest, ok := strings.CutPrefix(s, "@")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

func resolveReferences(refs []string, ids []string) ([]string, error) {
	resolved := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := resolveReference(ref, ids)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, id)
	}
	return resolved, nil
}

// exitCode maps an error to the process exit code: 0 success, 2 operator
// abort, 3 missing scene or session, 4 malformed scene, 1 anything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, playback.ErrAborted):
		return 2
	case errors.Is(err, scene.ErrNotFound), errors.Is(err, store.ErrSessionNotFound):
		return 3
	case errors.Is(err, scene.ErrInvalidFormat):
		return 4
	default:
		return 1
	}
}

// needsNewline reports whether printed output should be terminated before
// writing anything further.
func needsNewline(s string) bool {
	return s != "" && !strings.HasSuffix(s, "\n")
}
