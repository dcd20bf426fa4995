// Package clipboard wraps the system clipboard behind a single call site.
// Clipboard failures are never fatal to playback; callers log and move on.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable means no system clipboard utility could be used.
var ErrUnavailable = errors.New("clipboard unavailable")

// Copy places text on the system clipboard.
func Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
