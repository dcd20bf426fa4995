package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Adaptive colors for light/dark terminal backgrounds
	accentColor = lipgloss.AdaptiveColor{Light: "#D6249F", Dark: "#FF79C6"}
	greenColor  = lipgloss.AdaptiveColor{Light: "#116620", Dark: "#50FA7B"}
	yellowColor = lipgloss.AdaptiveColor{Light: "#7D5A00", Dark: "#F1FA8C"}
	redColor    = lipgloss.AdaptiveColor{Light: "#B31D28", Dark: "#FF5555"}
	dimColor    = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#6272A4"}
	hlBgColor   = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#333333"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			PaddingLeft(1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			PaddingLeft(1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	selectedRowStyle = lipgloss.NewStyle().
				Background(hlBgColor)

	statusPaused = lipgloss.NewStyle().
			Foreground(yellowColor)

	statusRunning = lipgloss.NewStyle().
			Foreground(greenColor)

	stepsStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	confirmLabelStyle = lipgloss.NewStyle().
				Foreground(redColor).
				Bold(true).
				PaddingLeft(1)

	confirmDimStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			PaddingLeft(1)

	inputLabelStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)
)

// pad right-pads s to width with spaces (based on visual width, not byte count).
func pad(s string, width int) string {
	visual := lipgloss.Width(s)
	if visual >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visual)
}

func renderStatus(status string) string {
	switch status {
	case "paused":
		return statusPaused.Render(status)
	case "running":
		return statusRunning.Render(status)
	default:
		return status
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	// Title
	b.WriteString(titleStyle.Render("scenecast"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(fmt.Sprintf("  Error: %v\n\n", m.err))
	} else if len(m.rows) == 0 {
		if strings.TrimSpace(m.input.Value()) != "" {
			b.WriteString("  No matches.\n\n")
		} else {
			b.WriteString("  No scenes. Run: scenecast record <name>\n\n")
		}
	} else {
		m.renderRows(&b)
	}

	// Remove confirmation bar
	if m.confirm != nil {
		b.WriteString("\n")
		b.WriteString(confirmLabelStyle.Render(fmt.Sprintf("Remove session %s?", m.confirm.id)))
		b.WriteString(confirmDimStyle.Render("enter confirms, any other key cancels"))
		b.WriteString("\n")
	}

	// Filter input
	b.WriteString("\n")
	b.WriteString(inputLabelStyle.Render(" > "))
	b.WriteString(m.input.View())
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("↑/↓ move · enter play/resume · ctrl+k remove · esc clear · q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderRows(b *strings.Builder) {
	nameWidth := 10
	for _, r := range m.rows {
		var w int
		if r.scene != nil {
			w = lipgloss.Width(r.scene.Name)
		} else {
			w = lipgloss.Width(r.session.ID)
		}
		if w > nameWidth {
			nameWidth = w
		}
	}

	var lastSection string
	for i, r := range m.rows {
		section := "SCENES"
		if r.session != nil {
			section = "RESUMABLE SESSIONS"
		}
		if section != lastSection {
			if lastSection != "" {
				b.WriteString("\n")
			}
			b.WriteString(sectionStyle.Render(section))
			b.WriteString("\n")
			lastSection = section
		}

		var line string
		if r.scene != nil {
			line = " " + pad(r.scene.Name, nameWidth) + "  " +
				stepsStyle.Render(fmt.Sprintf("%d steps", r.scene.Steps))
		} else {
			line = " " + pad(r.session.ID, nameWidth) + "  " +
				pad(r.session.Scene, 16) + "  " +
				pad(renderStatus(r.session.Status), 8) + "  " +
				stepsStyle.Render(r.session.StartedAt.Local().Format("2006-01-02 15:04"))
		}

		if i == m.cursor {
			b.WriteString(cursorStyle.Render(" >"))
			b.WriteString(selectedRowStyle.Render(line))
		} else {
			b.WriteString("  ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
