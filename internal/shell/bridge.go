// Package shell owns the live subprocess shell a playback session types
// into. The shell runs on a pseudo-terminal so it behaves exactly as it
// would for a human presenter: prompts, echo, and job control all work.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
)

var (
	// ErrSpawnFailed means the shell subprocess could not be started.
	ErrSpawnFailed = errors.New("could not spawn shell")
	// ErrUnavailable means input was sent after the subprocess exited.
	ErrUnavailable = errors.New("shell unavailable")
)

// DefaultShell is used when neither config nor flags name one.
const DefaultShell = "/bin/bash"

const terminateGrace = 2 * time.Second

// Bridge is a live shell subprocess with an append-only input channel and a
// continuously drained output stream. It performs no interpretation of the
// bytes in either direction.
type Bridge struct {
	cmd  *exec.Cmd
	ptmx *os.File

	out  chan []byte
	done chan struct{}

	mu       sync.Mutex
	exited   bool
	exitCode int

	termOnce sync.Once
	termErr  error
}

// Start spawns the shell on a pty and begins draining its output.
func Start(ctx context.Context, shellPath string) (*Bridge, error) {
	if shellPath == "" {
		shellPath = DefaultShell
	}

	cmd := exec.CommandContext(ctx, shellPath)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLUMNS=80",
		"LINES=24",
	)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 24, Cols: 80})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawnFailed, shellPath, err)
	}

	b := &Bridge{
		cmd:  cmd,
		ptmx: ptmx,
		out:  make(chan []byte, 64),
		done: make(chan struct{}),
	}
	go b.drain()
	return b, nil
}

// drain reads the pty master until the subprocess exits. On Linux the read
// fails with EIO once the child is gone; treat any read error as EOF.
func (b *Bridge) drain() {
	buf := make([]byte, 4096)
	for {
		n, err := b.ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			b.out <- chunk
		}
		if err != nil {
			break
		}
	}

	err := b.cmd.Wait()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		code = -1
	}

	b.mu.Lock()
	b.exited = true
	b.exitCode = code
	b.mu.Unlock()

	b.ptmx.Close()
	close(b.out)
	close(b.done)
}

// Send queues input bytes for the shell. It fails with ErrUnavailable once
// the subprocess has exited; otherwise it blocks only on natural pipe
// back-pressure.
func (b *Bridge) Send(data []byte) error {
	b.mu.Lock()
	exited := b.exited
	b.mu.Unlock()
	if exited {
		return ErrUnavailable
	}

	if _, err := b.ptmx.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Output returns the channel of captured output chunks. The channel is
// closed when the subprocess exits or the bridge is terminated.
func (b *Bridge) Output() <-chan []byte {
	return b.out
}

// Done is closed once the subprocess has exited and its exit code is
// recorded.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// ExitCode returns the subprocess exit code. Only meaningful after Done is
// closed.
func (b *Bridge) ExitCode() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exitCode
}

// Terminate asks the shell to exit: SIGTERM, a grace period, then SIGKILL.
// Idempotent; safe to call from any goroutine at any point, including while
// a Send is sleeping or the subprocess is mid-spawn.
func (b *Bridge) Terminate(ctx context.Context) error {
	b.termOnce.Do(func() {
		select {
		case <-b.done:
			return
		default:
		}

		_ = b.cmd.Process.Signal(syscall.SIGTERM)

		grace := time.NewTimer(terminateGrace)
		defer grace.Stop()
		select {
		case <-b.done:
			return
		case <-grace.C:
		case <-ctx.Done():
		}

		if err := b.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			b.termErr = fmt.Errorf("could not kill shell: %w", err)
			return
		}

		// The drain goroutine blocks on the output channel if the consumer
		// stopped reading, so don't wait on done unconditionally here.
		wait := time.NewTimer(time.Second)
		defer wait.Stop()
		select {
		case <-b.done:
		case <-wait.C:
		}
	})
	return b.termErr
}
