// Package tui is the interactive browser shown when scenecast runs with no
// arguments: pick a scene to play or an unfinished session to resume.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const pollInterval = 1500 * time.Millisecond

// SceneItem is one playable scene row.
type SceneItem struct {
	Name  string
	Steps int
}

// SessionItem is one resumable session row.
type SessionItem struct {
	ID        string
	Scene     string
	Status    string
	StartedAt time.Time
}

// Loader supplies the browser's data. The cmd layer implements it over the
// scene and session stores; tests use a fixture.
type Loader interface {
	Scenes() ([]SceneItem, error)
	Sessions() ([]SessionItem, error)
	RemoveSession(id string) error
}

type tickMsg time.Time

type listingMsg struct {
	scenes   []SceneItem
	sessions []SessionItem
}

type removedMsg struct {
	id  string
	err error
}

// row is one selectable line; exactly one of scene/session is set.
type row struct {
	scene   *SceneItem
	session *SessionItem
}

func (r row) matches(filter string) bool {
	if filter == "" {
		return true
	}
	filter = strings.ToLower(filter)
	if r.scene != nil {
		return strings.Contains(strings.ToLower(r.scene.Name), filter)
	}
	return strings.Contains(strings.ToLower(r.session.ID), filter) ||
		strings.Contains(strings.ToLower(r.session.Scene), filter)
}

type confirmRemove struct {
	id string
}

type Model struct {
	loader Loader

	scenes   []SceneItem
	sessions []SessionItem
	rows     []row
	cursor   int

	input         textinput.Model
	confirm       *confirmRemove
	width, height int
	quitting      bool
	err           error

	// Set when the operator picks something; cmd reads these after Run.
	PlayScene     string
	ResumeSession string
}

func NewModel(loader Loader) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 128
	ti.Width = 60

	return Model{
		loader: loader,
		input:  ti,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.reload, tickCmd())
}

// reload fetches both listings. Scenes are the primary content; a session
// listing error is dropped so a broken index doesn't blank the browser.
func (m Model) reload() tea.Msg {
	scenes, err := m.loader.Scenes()
	if err != nil {
		return err
	}
	sessions, _ := m.loader.Sessions()
	return listingMsg{scenes: scenes, sessions: sessions}
}

func (m *Model) rebuildRows() {
	filter := strings.TrimSpace(m.input.Value())
	m.rows = m.rows[:0]
	for i := range m.scenes {
		r := row{scene: &m.scenes[i]}
		if r.matches(filter) {
			m.rows = append(m.rows, r)
		}
	}
	for i := range m.sessions {
		r := row{session: &m.sessions[i]}
		if r.matches(filter) {
			m.rows = append(m.rows, r)
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() *row {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[m.cursor]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case listingMsg:
		m.scenes = msg.scenes
		m.sessions = msg.sessions
		m.rebuildRows()
		return m, nil

	case removedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, m.reload

	case error:
		m.err = msg
		return m, nil

	case tickMsg:
		return m, tea.Batch(tickCmd(), m.reload)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits
	if key.Matches(msg, keys.CtrlC) {
		m.quitting = true
		return m, tea.Quit
	}

	if key.Matches(msg, keys.Escape) {
		if m.confirm != nil {
			m.confirm = nil
			return m, nil
		}
		m.input.SetValue("")
		m.rebuildRows()
		return m, nil
	}

	// Pending remove confirmation: only Enter proceeds
	if m.confirm != nil {
		if key.Matches(msg, keys.Enter) {
			id := m.confirm.id
			m.confirm = nil
			return m, func() tea.Msg {
				return removedMsg{id: id, err: m.loader.RemoveSession(id)}
			}
		}
		// Any other key cancels
		m.confirm = nil
		return m, nil
	}

	// Ctrl+K: remove the selected session
	if key.Matches(msg, keys.Remove) {
		if sel := m.selected(); sel != nil && sel.session != nil {
			m.confirm = &confirmRemove{id: sel.session.ID}
		}
		return m, nil
	}

	// q quits only when the filter is empty
	if key.Matches(msg, keys.Quit) && m.input.Value() == "" {
		m.quitting = true
		return m, tea.Quit
	}

	// Navigation: only when the filter is empty
	if m.input.Value() == "" {
		if key.Matches(msg, keys.Up) {
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		}
		if key.Matches(msg, keys.Down) {
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	if key.Matches(msg, keys.Enter) {
		sel := m.selected()
		if sel == nil {
			return m, nil
		}
		if sel.scene != nil {
			m.PlayScene = sel.scene.Name
		} else {
			m.ResumeSession = sel.session.ID
		}
		m.quitting = true
		return m, tea.Quit
	}

	// Default: update the filter and refilter
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.rebuildRows()
	return m, cmd
}
