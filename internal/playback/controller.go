// Package playback drives a session: it paces keystrokes into the shell
// bridge according to the timing schedule, drains shell output into the
// transcript, and reacts to operator control signals between every
// character. Pausing never loses partial input and resuming never replays
// already-sent characters.
package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simon/scenecast/internal/control"
	"github.com/simon/scenecast/internal/scene"
	"github.com/simon/scenecast/internal/timing"
)

var (
	// ErrAborted reports an operator-initiated abort.
	ErrAborted = errors.New("playback aborted")
	// ErrShellExited reports an unexpected subprocess exit mid-playback.
	ErrShellExited = errors.New("shell exited unexpectedly")
)

// errSkip is internal flow control: abandon the current step.
var errSkip = errors.New("skip step")

// Bridge is the shell session the controller types into. *shell.Bridge
// satisfies it; tests substitute a fake.
type Bridge interface {
	Send(data []byte) error
	Output() <-chan []byte
	Done() <-chan struct{}
	ExitCode() int
	Terminate(ctx context.Context) error
}

// SnapshotFunc persists session progress. Called after every completed step
// and on every pause transition, never mid-character.
type SnapshotFunc func(*Session) error

// NotifyFunc observes transcript entries as they are appended, for live
// display.
type NotifyFunc func(Entry)

type Options struct {
	Signals  <-chan control.Signal
	Snapshot SnapshotFunc
	Notify   NotifyFunc
	Speed    float64 // delay divisor; <= 0 means 1
	StepMode bool    // auto-pause after every step
}

type Controller struct {
	scene   *scene.Scene
	sess    *Session
	bridge  Bridge
	signals <-chan control.Signal
	opts    Options

	stepMode bool
}

func New(sc *scene.Scene, sess *Session, bridge Bridge, opts Options) *Controller {
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	return &Controller{
		scene:    sc,
		sess:     sess,
		bridge:   bridge,
		signals:  opts.Signals,
		opts:     opts,
		stepMode: opts.StepMode,
	}
}

// Run plays the session to a terminal status. It returns nil for Completed,
// ErrAborted for an operator abort, an ErrShellExited-wrapped error for an
// unexpected subprocess exit, and the snapshot error if persistence failed.
// The bridge is always terminated and the transcript sealed on return.
func (c *Controller) Run(ctx context.Context) error {
	g := &errgroup.Group{}
	g.Go(func() error {
		// Drains continuously so output capture never blocks the sender,
		// even while it sleeps between keystrokes.
		for chunk := range c.bridge.Output() {
			c.append(EntryOutput, string(chunk))
		}
		return nil
	})

	err := c.play(ctx)

	c.bridge.Terminate(context.Background())
	_ = g.Wait()
	c.sess.Transcript.Seal()
	return err
}

func (c *Controller) play(ctx context.Context) error {
	c.sess.Status = StatusRunning

	for c.sess.StepIndex < len(c.scene.Steps) {
		step := c.scene.Steps[c.sess.StepIndex]

		err := c.runStep(ctx, step)
		if errors.Is(err, errSkip) {
			c.append(EntrySkipped, step.Text)
			err = nil
		}
		if err != nil {
			return err
		}

		c.sess.Cursor = 0
		c.sess.StepIndex++
		if err := c.snapshot(); err != nil {
			return c.fail(fmt.Sprintf("snapshot failed: %v", err), err)
		}

		if c.stepMode && c.sess.StepIndex < len(c.scene.Steps) {
			if err := c.pause(ctx); err != nil {
				if errors.Is(err, errSkip) {
					// Skip issued while paused: drop the upcoming step.
					c.append(EntrySkipped, c.scene.Steps[c.sess.StepIndex].Text)
					c.sess.StepIndex++
					if err := c.snapshot(); err != nil {
						return c.fail(fmt.Sprintf("snapshot failed: %v", err), err)
					}
					continue
				}
				return err
			}
		}
	}

	c.finishShell()
	c.sess.Status = StatusCompleted
	if err := c.snapshot(); err != nil {
		return fmt.Errorf("completed, but snapshot failed: %w", err)
	}
	return nil
}

func (c *Controller) runStep(ctx context.Context, step scene.Step) error {
	switch step.Kind {
	case scene.StepComment:
		c.append(EntryComment, step.Text)
		return nil
	case scene.StepMarker:
		c.append(EntryMarker, step.Text)
		return nil
	case scene.StepPause:
		if step.Indefinite() {
			return c.pause(ctx)
		}
		return c.sleep(ctx, time.Duration(step.Wait))
	case scene.StepCommand:
		return c.typeCommand(ctx, step)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

// typeCommand consumes the step's keystroke schedule one entry at a time.
// The per-character sleep is the sole suspension point, so a pause or abort
// lands exactly between characters and the saved cursor fully describes the
// interruption.
func (c *Controller) typeCommand(ctx context.Context, step scene.Step) error {
	prof := c.scene.EffectiveTiming(step)
	seed := timing.StepSeed(c.sess.Seed, c.sess.StepIndex)
	sched := timing.ScheduleFrom(step.Text, prof, seed, c.sess.Cursor)

	if c.sess.Cursor == 0 && prof.DelayBefore > 0 {
		if err := c.sleep(ctx, time.Duration(prof.DelayBefore)); err != nil {
			return err
		}
	}

	for _, ks := range sched {
		if err := c.sleep(ctx, ks.Delay); err != nil {
			return err
		}
		if err := c.bridge.Send([]byte(string(ks.Rune))); err != nil {
			return c.sendFailed(err)
		}
		c.append(EntryInput, string(ks.Rune))
		c.sess.Cursor++
	}

	if err := c.bridge.Send([]byte("\n")); err != nil {
		return c.sendFailed(err)
	}
	c.append(EntryCommand, step.Text)

	if prof.DelayAfter > 0 {
		if err := c.sleep(ctx, time.Duration(prof.DelayAfter)); err != nil {
			return err
		}
	}
	return nil
}

// sleep waits d (scaled by speed), reacting to control signals, context
// cancellation, and subprocess death. A pause during the sleep restarts the
// full delay on resume.
func (c *Controller) sleep(ctx context.Context, d time.Duration) error {
	d = time.Duration(float64(d) / c.opts.Speed)
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return c.abort()
		case <-c.bridge.Done():
			return c.failShellExit()
		case sig, ok := <-c.signals:
			if !ok {
				c.signals = nil
				continue
			}
			switch sig {
			case control.SignalPause:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				if err := c.pause(ctx); err != nil {
					return err
				}
				timer.Reset(d)
			case control.SignalStep:
				c.stepMode = true
			case control.SignalSkip:
				return errSkip
			case control.SignalAbort:
				return c.abort()
			}
		}
	}
}

// pause blocks until the operator continues. Also serves indefinite pause
// steps. Returns errSkip if the operator skips while paused.
func (c *Controller) pause(ctx context.Context) error {
	c.sess.Status = StatusPaused
	if err := c.snapshot(); err != nil {
		return c.fail(fmt.Sprintf("snapshot failed: %v", err), err)
	}

	for {
		select {
		case <-ctx.Done():
			return c.abort()
		case <-c.bridge.Done():
			return c.failShellExit()
		case sig, ok := <-c.signals:
			if !ok {
				// Control stream gone; nothing can ever resume us.
				return c.abort()
			}
			switch sig {
			case control.SignalResume:
				c.stepMode = c.opts.StepMode
				c.sess.Status = StatusRunning
				return nil
			case control.SignalStep:
				c.stepMode = true
				c.sess.Status = StatusRunning
				return nil
			case control.SignalSkip:
				c.sess.Status = StatusRunning
				return errSkip
			case control.SignalAbort:
				return c.abort()
			}
		}
	}
}

// finishShell closes out a completed run: ask the shell to exit so trailing
// output flushes, then fall back to termination.
func (c *Controller) finishShell() {
	if err := c.bridge.Send([]byte("exit\n")); err == nil {
		settle := time.NewTimer(5 * time.Second)
		defer settle.Stop()
		select {
		case <-c.bridge.Done():
		case <-settle.C:
		}
	}
}

func (c *Controller) abort() error {
	c.bridge.Terminate(context.Background())
	c.sess.Status = StatusAborted
	c.snapshotBestEffort()
	return ErrAborted
}

// sendFailed classifies a failed Send: if the subprocess is confirmed dead,
// record its exit code; otherwise report the write failure as-is.
func (c *Controller) sendFailed(err error) error {
	wait := time.NewTimer(time.Second)
	defer wait.Stop()
	select {
	case <-c.bridge.Done():
		return c.failShellExit()
	case <-wait.C:
	}
	return c.fail(fmt.Sprintf("send failed: %v", err), fmt.Errorf("%w: %v", ErrShellExited, err))
}

func (c *Controller) failShellExit() error {
	code := c.bridge.ExitCode()
	err := fmt.Errorf("%w: exit code %d", ErrShellExited, code)
	c.sess.ExitCode = code
	return c.fail(err.Error(), err)
}

// fail transitions to Failed, preserves the transcript, and attempts one
// best-effort snapshot without masking cause.
func (c *Controller) fail(reason string, cause error) error {
	c.bridge.Terminate(context.Background())
	c.sess.Status = StatusFailed
	c.sess.Reason = reason
	c.snapshotBestEffort()
	return cause
}

func (c *Controller) snapshot() error {
	if c.opts.Snapshot == nil {
		return nil
	}
	return c.opts.Snapshot(c.sess)
}

func (c *Controller) snapshotBestEffort() {
	if c.opts.Snapshot != nil {
		_ = c.opts.Snapshot(c.sess)
	}
}

func (c *Controller) append(kind EntryKind, data string) {
	c.sess.Transcript.Append(kind, data)
	if c.opts.Notify != nil {
		c.opts.Notify(Entry{Time: time.Now(), Kind: kind, Data: data})
	}
}
