package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type fixtureLoader struct {
	scenes   []SceneItem
	sessions []SessionItem
	removed  []string
}

func (f *fixtureLoader) Scenes() ([]SceneItem, error)     { return f.scenes, nil }
func (f *fixtureLoader) Sessions() ([]SessionItem, error) { return f.sessions, nil }
func (f *fixtureLoader) RemoveSession(id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func testLoader() *fixtureLoader {
	return &fixtureLoader{
		scenes: []SceneItem{
			{Name: "kube-demo", Steps: 5},
			{Name: "git-walkthrough", Steps: 3},
		},
		sessions: []SessionItem{
			{ID: "20260115093000123-ab12cd34", Scene: "kube-demo", Status: "paused", StartedAt: time.Now()},
		},
	}
}

func loadedModel(t *testing.T, loader *fixtureLoader) Model {
	t.Helper()
	m := NewModel(loader)
	updated, _ := m.Update(m.reload())
	return updated.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestListingBuildsRows(t *testing.T) {
	m := loadedModel(t, testLoader())
	if len(m.rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(m.rows))
	}
	if m.rows[0].scene == nil || m.rows[2].session == nil {
		t.Fatal("expected scenes before sessions")
	}
}

func TestEnterSelectsScene(t *testing.T) {
	m := loadedModel(t, testLoader())
	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(Model)
	if m.PlayScene != "kube-demo" {
		t.Errorf("PlayScene = %q, want kube-demo", m.PlayScene)
	}
	if m.ResumeSession != "" {
		t.Errorf("ResumeSession = %q, want empty", m.ResumeSession)
	}
}

func TestEnterSelectsSession(t *testing.T) {
	m := loadedModel(t, testLoader())
	for i := 0; i < 2; i++ {
		updated, _ := m.Update(keyMsg("down"))
		m = updated.(Model)
	}
	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(Model)
	if m.ResumeSession != "20260115093000123-ab12cd34" {
		t.Errorf("ResumeSession = %q", m.ResumeSession)
	}
}

func TestFilterNarrowsRows(t *testing.T) {
	m := loadedModel(t, testLoader())
	updated, _ := m.Update(keyMsg("git"))
	m = updated.(Model)
	if len(m.rows) != 1 {
		t.Fatalf("got %d rows after filter, want 1", len(m.rows))
	}
	if m.rows[0].scene == nil || m.rows[0].scene.Name != "git-walkthrough" {
		t.Fatal("filter kept the wrong row")
	}

	updated, _ = m.Update(keyMsg("esc"))
	m = updated.(Model)
	if len(m.rows) != 3 {
		t.Fatalf("got %d rows after esc, want 3", len(m.rows))
	}
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	loader := testLoader()
	m := loadedModel(t, loader)

	// Move to the session row and request removal
	for i := 0; i < 2; i++ {
		updated, _ := m.Update(keyMsg("down"))
		m = updated.(Model)
	}
	updated, _ := m.Update(keyMsg("ctrl+k"))
	m = updated.(Model)
	if m.confirm == nil {
		t.Fatal("expected pending confirmation")
	}

	// Any key other than enter cancels
	updated, _ = m.Update(keyMsg("x"))
	m = updated.(Model)
	if m.confirm != nil {
		t.Fatal("confirmation should be cancelled")
	}
	if len(loader.removed) != 0 {
		t.Fatalf("removed %v without confirmation", loader.removed)
	}

	// Confirm this time
	updated, _ = m.Update(keyMsg("ctrl+k"))
	m = updated.(Model)
	updated, cmd := m.Update(keyMsg("enter"))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a remove command")
	}
	if msg, ok := cmd().(removedMsg); !ok || msg.err != nil {
		t.Fatalf("remove command returned %v", msg)
	}
	if len(loader.removed) != 1 || loader.removed[0] != "20260115093000123-ab12cd34" {
		t.Fatalf("removed = %v", loader.removed)
	}
}

func TestRemoveIgnoresSceneRows(t *testing.T) {
	m := loadedModel(t, testLoader())
	updated, _ := m.Update(keyMsg("ctrl+k"))
	m = updated.(Model)
	if m.confirm != nil {
		t.Fatal("scene rows must not offer removal")
	}
}
