package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/simon/scenecast/internal/playback"
	"github.com/simon/scenecast/internal/store"
)

var (
	// Adaptive colors for light/dark terminal backgrounds
	accentColor = lipgloss.AdaptiveColor{Light: "#D6249F", Dark: "#FF79C6"}
	greenColor  = lipgloss.AdaptiveColor{Light: "#116620", Dark: "#50FA7B"}
	yellowColor = lipgloss.AdaptiveColor{Light: "#7D5A00", Dark: "#F1FA8C"}
	redColor    = lipgloss.AdaptiveColor{Light: "#B31D28", Dark: "#FF5555"}
	dimColor    = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#6272A4"}

	commentStyle = lipgloss.NewStyle().Foreground(dimColor).Italic(true)
	markerStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(yellowColor)
	headerStyle  = lipgloss.NewStyle().Foreground(dimColor)

	statusStyles = map[string]lipgloss.Style{
		"completed": lipgloss.NewStyle().Foreground(greenColor),
		"running":   lipgloss.NewStyle().Foreground(greenColor),
		"paused":    lipgloss.NewStyle().Foreground(yellowColor),
		"aborted":   lipgloss.NewStyle().Foreground(yellowColor),
		"failed":    lipgloss.NewStyle().Foreground(redColor).Bold(true),
	}
)

func styleStatus(status string) string {
	if st, ok := statusStyles[status]; ok {
		return st.Render(status)
	}
	return status
}

// narrate renders a transcript entry during live playback. Output chunks go
// to w verbatim (the pty echoes typed keystrokes, so the audience sees the
// typing through the output stream); narration entries get a styled line.
// Lines end with \r\n because the terminal is in raw mode while the control
// listener runs.
func narrate(w io.Writer, e playback.Entry) {
	switch e.Kind {
	case playback.EntryOutput:
		fmt.Fprint(w, e.Data)
	case playback.EntryComment:
		fmt.Fprintf(w, "%s\r\n", commentStyle.Render("# "+e.Data))
	case playback.EntryMarker:
		fmt.Fprintf(w, "%s\r\n", markerStyle.Render("── "+e.Data+" ──"))
	case playback.EntrySkipped:
		fmt.Fprintf(w, "%s\r\n", skippedStyle.Render("(skipped) "+e.Data))
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

// printTranscript renders a recorded session: commands prefixed with "$ ",
// raw output in between, narration entries styled.
func printTranscript(out, errOut io.Writer, snap *store.Snapshot) {
	fmt.Fprintln(errOut, headerStyle.Render(
		fmt.Sprintf("session %s scene %s (%s, %s)",
			snap.ID, snap.SceneName, snap.Status, formatTime(snap.StartedAt))))

	var lastOutput string
	for _, e := range snap.Transcript {
		switch e.Kind {
		case playback.EntryCommand:
			// Typed keystrokes already appear via terminal echo in the
			// output chunks; no separate "$" line needed mid-stream.
		case playback.EntryOutput:
			fmt.Fprint(out, e.Data)
			lastOutput = e.Data
		case playback.EntryComment:
			fmt.Fprintln(out, commentStyle.Render("# "+e.Data))
		case playback.EntryMarker:
			fmt.Fprintln(out, markerStyle.Render("── "+e.Data+" ──"))
		case playback.EntrySkipped:
			fmt.Fprintln(out, skippedStyle.Render("(skipped) "+e.Data))
		}
	}
	if needsNewline(lastOutput) {
		fmt.Fprintln(out)
	}
}

// printScript renders just the commands of a session, one per line, so the
// output is itself replayable as a script.
func printScript(out, errOut io.Writer, snap *store.Snapshot) {
	fmt.Fprintln(errOut, headerStyle.Render(
		fmt.Sprintf("session %s scene %s (%s)", snap.ID, snap.SceneName, formatTime(snap.StartedAt))))
	for _, e := range snap.Transcript {
		if e.Kind == playback.EntryCommand {
			fmt.Fprintln(out, e.Data)
		}
	}
}

// renderTranscriptPlain renders a session without styling, for clipboard
// copy.
func renderTranscriptPlain(snap *store.Snapshot) string {
	var b strings.Builder
	for _, e := range snap.Transcript {
		switch e.Kind {
		case playback.EntryOutput:
			b.WriteString(e.Data)
		case playback.EntryComment:
			b.WriteString("# " + e.Data + "\n")
		case playback.EntryMarker:
			b.WriteString("-- " + e.Data + " --\n")
		case playback.EntrySkipped:
			b.WriteString("(skipped) " + e.Data + "\n")
		}
	}
	if needsNewline(b.String()) {
		b.WriteString("\n")
	}
	return b.String()
}

// renderScriptPlain renders just the commands, one per line.
func renderScriptPlain(snap *store.Snapshot) string {
	var b strings.Builder
	for _, e := range snap.Transcript {
		if e.Kind == playback.EntryCommand {
			b.WriteString(e.Data + "\n")
		}
	}
	return b.String()
}

// printSessionBrief prints one session row for list output: key, id, scene,
// status, start time, and optionally its commands.
func printSessionBrief(out io.Writer, key int, info store.SessionInfo, commands []string, max int) {
	fmt.Fprintf(out, "%d: %s  %s  %s  %s\n",
		key, info.ID, info.Scene, styleStatus(info.Status), headerStyle.Render(formatTime(info.StartedAt)))

	n := len(commands)
	if max > 0 && max < n {
		n = max
	}
	for _, cmd := range commands[:n] {
		fmt.Fprintf(out, "    $ %s\n", cmd)
	}
	if rem := len(commands) - n; rem > 0 {
		fmt.Fprintf(out, "    ... (%d more commands)\n", rem)
	}
}
