package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simon/scenecast/internal/playback"
	"github.com/simon/scenecast/internal/scene"
)

var (
	resumeSpeed   float64
	resumeShell   string
	resumeNoInput bool
	resumeStep    bool
)

var resumeCmd = &cobra.Command{
	Use:   "resume <session|@N>",
	Short: "Resume an interrupted session",
	Long: "Resume continues a paused or interrupted session from its last\n" +
		"snapshot. Completed steps are never replayed; a step interrupted\n" +
		"mid-command continues from the exact character it stopped at, with\n" +
		"the same timing it would have had uninterrupted.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ids, err := e.sessionIDs()
		if err != nil {
			return err
		}
		id, err := resolveReference(args[0], ids)
		if err != nil {
			return err
		}

		snap, err := e.snaps.Read(id)
		if err != nil {
			return err
		}
		if st := playback.ParseStatus(snap.Status); st.Terminal() {
			return fmt.Errorf("session %s already %s", id, st)
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

		sess := snap.Restore()
		fmt.Fprintf(cmd.ErrOrStderr(), "resuming %s at step %d (session %s)\n",
			sc.Name, sess.StepIndex+1, sess.ID)

		return runSession(cmd.Context(), e, sc, sess, playOptions{
			speed:     resumeSpeed,
			shellPath: resumeShell,
			noInput:   resumeNoInput || e.cfg.NoInput,
			stepMode:  resumeStep,
		})
	},
}

func init() {
	resumeCmd.Flags().Float64Var(&resumeSpeed, "speed", 0, "speed multiplier (divides delays; 0 uses config)")
	resumeCmd.Flags().StringVar(&resumeShell, "shell", "", "shell binary (default from config, then /bin/bash)")
	resumeCmd.Flags().BoolVar(&resumeNoInput, "no-input", false, "disable control keys")
	resumeCmd.Flags().BoolVar(&resumeStep, "step", false, "pause after every step")
	rootCmd.AddCommand(resumeCmd)
}
