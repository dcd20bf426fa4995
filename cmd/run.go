package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/simon/scenecast/internal/config"
	"github.com/simon/scenecast/internal/control"
	"github.com/simon/scenecast/internal/playback"
	"github.com/simon/scenecast/internal/scene"
	"github.com/simon/scenecast/internal/shell"
	"github.com/simon/scenecast/internal/store"
)

// env bundles the opened stores every command works against.
type env struct {
	cfg    *config.Config
	scenes *scene.Store
	snaps  *store.SnapshotStore
	index  *store.Index
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	scenesDir, err := cfg.ScenesDir()
	if err != nil {
		return nil, err
	}
	sessionsDir, err := cfg.SessionsDir()
	if err != nil {
		return nil, err
	}
	for _, dir := range []string{scenesDir, sessionsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create %s: %w", dir, err)
		}
	}

	indexPath, err := cfg.IndexPath()
	if err != nil {
		return nil, err
	}
	index, err := store.OpenIndex(indexPath)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:    cfg,
		scenes: scene.NewStore(scenesDir),
		snaps:  store.NewSnapshotStore(sessionsDir),
		index:  index,
	}, nil
}

func (e *env) Close() {
	_ = e.index.Close()
}

// snapshot persists the session and mirrors its summary into the index.
func (e *env) snapshot(sess *playback.Session) error {
	if err := e.snaps.Write(sess); err != nil {
		return err
	}
	return e.index.Record(sess.ID, sess.SceneName, sess.Status.String(),
		e.snaps.Path(sess.ID), sess.StartedAt)
}

// sessionIDs returns known session ids newest first, for @N resolution.
func (e *env) sessionIDs() ([]string, error) {
	infos, err := e.index.List(-1)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids, nil
}

// playOptions are the per-invocation knobs shared by play and resume.
type playOptions struct {
	speed     float64
	shellPath string
	noInput   bool
	stepMode  bool
}

// runSession drives one playback session to a terminal state. The terminal
// is in raw mode for the duration unless input is disabled, so ctrl+c
// reaches us as an abort key rather than a signal.
func runSession(ctx context.Context, e *env, sc *scene.Scene, sess *playback.Session, opts playOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shellPath := opts.shellPath
	if shellPath == "" {
		shellPath = e.cfg.Shell
	}
	if opts.speed <= 0 {
		opts.speed = e.cfg.Speed
	}

	bridge, err := shell.Start(ctx, shellPath)
	if err != nil {
		return err
	}

	var signals <-chan control.Signal
	var listener *control.Listener
	if !opts.noInput {
		listener, err = control.Listen(os.Stdin)
		if err != nil {
			// Not a terminal (piped stdin, CI): play through without
			// control keys.
			fmt.Fprintf(os.Stderr, "control keys unavailable: %v\n", err)
		} else {
			defer listener.Stop()
			signals = listener.Signals()
			fmt.Fprint(os.Stderr, headerStyle.Render(
				"space pause · c resume · s step · k skip · q abort")+"\r\n")
		}
	}

	ctl := playback.New(sc, sess, bridge, playback.Options{
		Signals:  signals,
		Snapshot: e.snapshot,
		Notify:   func(entry playback.Entry) { narrate(os.Stdout, entry) },
		Speed:    opts.speed,
		StepMode: opts.stepMode,
	})

	runErr := ctl.Run(ctx)
	if listener != nil {
		// Leave raw mode before printing the summary so newlines behave.
		listener.Stop()
	}
	fmt.Fprintln(os.Stdout)
	printOutcome(os.Stderr, sess)

	if runErr != nil && !errors.Is(runErr, playback.ErrAborted) {
		return runErr
	}
	if sess.Status == playback.StatusAborted {
		return playback.ErrAborted
	}
	return nil
}

func printOutcome(w *os.File, sess *playback.Session) {
	switch sess.Status {
	case playback.StatusCompleted:
		fmt.Fprintf(w, "session %s completed\n", sess.ID)
	case playback.StatusAborted:
		fmt.Fprintf(w, "session %s aborted at step %d\n", sess.ID, sess.StepIndex+1)
	case playback.StatusPaused:
		fmt.Fprintf(w, "session %s paused at step %d\n", sess.ID, sess.StepIndex+1)
	case playback.StatusFailed:
		fmt.Fprintf(w, "session %s failed: %s\n", sess.ID, sess.Reason)
	}
}
