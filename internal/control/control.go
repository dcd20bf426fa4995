// Package control carries operator input into the playback engine: the
// asynchronous pause/step/skip/abort signal stream, and the blocking line
// source used for scene recording. Both are small capability interfaces so
// tests can substitute deterministic fakes.
package control

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Signal is an operator control action delivered mid-playback.
type Signal int

const (
	SignalPause Signal = iota
	SignalResume
	SignalStep
	SignalSkip
	SignalAbort
)

func (s Signal) String() string {
	switch s {
	case SignalPause:
		return "pause"
	case SignalResume:
		return "resume"
	case SignalStep:
		return "step"
	case SignalSkip:
		return "skip"
	case SignalAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// ParseKey maps a raw keyboard byte to a signal. The bool is false for keys
// with no binding.
func ParseKey(b byte) (Signal, bool) {
	switch b {
	case ' ', 'p':
		return SignalPause, true
	case 'c', '\r', '\n':
		return SignalResume, true
	case 's':
		return SignalStep, true
	case 'k':
		return SignalSkip, true
	case 'q', 0x03: // q or ctrl+c
		return SignalAbort, true
	default:
		return 0, false
	}
}

// Listener reads raw keystrokes from a terminal and publishes them as
// signals. The terminal is held in raw mode for the listener's lifetime.
type Listener struct {
	in      *os.File
	signals chan Signal
	restore func()
}

// Listen puts the terminal into raw mode and starts the key reader. The
// returned stop function restores the terminal; it is safe to call more
// than once.
func Listen(in *os.File) (*Listener, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("control input is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("could not enter raw mode: %w", err)
	}

	l := &Listener{
		in:      in,
		signals: make(chan Signal, 8),
		restore: func() { _ = term.Restore(fd, oldState) },
	}
	go l.read()
	return l, nil
}

func (l *Listener) read() {
	buf := make([]byte, 1)
	for {
		n, err := l.in.Read(buf)
		if err != nil {
			close(l.signals)
			return
		}
		if n == 0 {
			continue
		}
		if sig, ok := ParseKey(buf[0]); ok {
			// Drop rather than block; a stale duplicate signal is worse
			// than a missed repeat keypress.
			select {
			case l.signals <- sig:
			default:
			}
			if sig == SignalAbort {
				return
			}
		}
	}
}

// Signals returns the signal stream.
func (l *Listener) Signals() <-chan Signal {
	return l.signals
}

// Stop restores the terminal state.
func (l *Listener) Stop() {
	if l.restore != nil {
		l.restore()
	}
}

// LineSource is a blocking line reader used for ad hoc operator input. EOF
// ends the stream.
type LineSource interface {
	ReadLine(prompt string) (string, error)
}

// StdinLineSource reads lines from an io.Reader, printing the prompt to
// stderr so piped stdout stays clean.
type StdinLineSource struct {
	r *bufio.Reader
}

func NewStdinLineSource(r io.Reader) *StdinLineSource {
	return &StdinLineSource{r: bufio.NewReader(r)}
}

func (s *StdinLineSource) ReadLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := s.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
