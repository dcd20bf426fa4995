package control

import (
	"io"
	"strings"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		key  byte
		sig  Signal
		ok   bool
		name string
	}{
		{' ', SignalPause, true, "space pauses"},
		{'p', SignalPause, true, "p pauses"},
		{'c', SignalResume, true, "c resumes"},
		{'\r', SignalResume, true, "enter resumes"},
		{'s', SignalStep, true, "s steps"},
		{'k', SignalSkip, true, "k skips"},
		{'q', SignalAbort, true, "q aborts"},
		{0x03, SignalAbort, true, "ctrl+c aborts"},
		{'x', 0, false, "unbound key"},
		{'1', 0, false, "digit unbound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := ParseKey(tt.key)
			if ok != tt.ok {
				t.Fatalf("ParseKey(%q) ok = %v, want %v", tt.key, ok, tt.ok)
			}
			if ok && sig != tt.sig {
				t.Errorf("ParseKey(%q) = %v, want %v", tt.key, sig, tt.sig)
			}
		})
	}
}

func TestSignalString(t *testing.T) {
	for sig, want := range map[Signal]string{
		SignalPause:  "pause",
		SignalResume: "resume",
		SignalStep:   "step",
		SignalSkip:   "skip",
		SignalAbort:  "abort",
		Signal(99):   "unknown",
	} {
		if got := sig.String(); got != want {
			t.Errorf("Signal(%d).String() = %q, want %q", int(sig), got, want)
		}
	}
}

func TestStdinLineSource(t *testing.T) {
	src := NewStdinLineSource(strings.NewReader("first\nsecond\r\nlast-no-newline"))

	for _, want := range []string{"first", "second", "last-no-newline"} {
		got, err := src.ReadLine("==> ")
		if err != nil {
			t.Fatalf("ReadLine() = %v", err)
		}
		if got != want {
			t.Errorf("ReadLine() = %q, want %q", got, want)
		}
	}

	if _, err := src.ReadLine("==> "); err != io.EOF {
		t.Errorf("ReadLine() at end = %v, want io.EOF", err)
	}
}
