package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/simon/scenecast/internal/playback"
	"github.com/simon/scenecast/internal/scene"
	"github.com/simon/scenecast/internal/store"
	"github.com/simon/scenecast/internal/tui"
)

func SetVersionInfo(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
}

var rootCmd = &cobra.Command{
	Use:   "scenecast",
	Short: "Type rehearsed shell scenes into a live terminal",
	Long: "Scenecast plays scripted shell sessions with human-like typing for\n" +
		"live demos and screencasts. Record a scene once, then play it back\n" +
		"into a real shell with pause, step, skip, and resume control.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		for {
			m := tui.NewModel(&envLoader{e: e})
			p := tea.NewProgram(m, tea.WithAltScreen())

			finalModel, err := p.Run()
			if err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}

			final := finalModel.(tui.Model)
			switch {
			case final.PlayScene != "":
				if err := playFromBrowser(cmd, e, final.PlayScene); err != nil {
					return err
				}
			case final.ResumeSession != "":
				if err := resumeFromBrowser(cmd, e, final.ResumeSession); err != nil {
					return err
				}
			default:
				return nil
			}
			// Loop restarts the browser after the session ends
		}
	},
}

func playFromBrowser(cmd *cobra.Command, e *env, name string) error {
	sc, err := e.scenes.Load(name)
	if err != nil {
		return err
	}
	sess, err := playback.NewSession(sc, time.Now().UnixNano())
	if err != nil {
		return err
	}
	err = runSession(cmd.Context(), e, sc, sess, playOptions{noInput: e.cfg.NoInput})
	if errors.Is(err, playback.ErrAborted) {
		// Back to the browser; the abort already printed its summary.
		return nil
	}
	return err
}

func resumeFromBrowser(cmd *cobra.Command, e *env, id string) error {
	snap, err := e.snaps.Read(id)
	if err != nil {
		return err
	}
	sc, err := e.scenes.Load(snap.SceneName)
	if err != nil {
		return err
	}
	sum, err := sc.Checksum()
	if err != nil {
		return err
	}
	if sum != snap.SceneChecksum {
		return fmt.Errorf("%w: scene %q changed since session %s was recorded",
			scene.ErrInvalidFormat, snap.SceneName, id)
	}
	err = runSession(cmd.Context(), e, sc, snap.Restore(), playOptions{noInput: e.cfg.NoInput})
	if errors.Is(err, playback.ErrAborted) {
		return nil
	}
	return err
}

// envLoader adapts the opened stores to the browser's data interface.
type envLoader struct {
	e *env
}

func (l *envLoader) Scenes() ([]tui.SceneItem, error) {
	names, err := l.e.scenes.List()
	if err != nil {
		return nil, err
	}
	items := make([]tui.SceneItem, 0, len(names))
	for _, name := range names {
		steps := 0
		if sc, err := l.e.scenes.Load(name); err == nil {
			steps = len(sc.Steps)
		}
		items = append(items, tui.SceneItem{Name: name, Steps: steps})
	}
	return items, nil
}

func (l *envLoader) Sessions() ([]tui.SessionItem, error) {
	infos, err := l.e.index.Resumable(20)
	if err != nil {
		return nil, err
	}
	items := make([]tui.SessionItem, 0, len(infos))
	for _, info := range infos {
		items = append(items, tui.SessionItem{
			ID:        info.ID,
			Scene:     info.Scene,
			Status:    info.Status,
			StartedAt: info.StartedAt,
		})
	}
	return items, nil
}

func (l *envLoader) RemoveSession(id string) error {
	if err := l.e.snaps.Remove(id); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		return err
	}
	err := l.e.index.Delete(id)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil
	}
	return err
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}
