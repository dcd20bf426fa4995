package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/simon/scenecast/internal/playback"
)

var (
	playSpeed   float64
	playSeed    int64
	playShell   string
	playNoInput bool
	playStep    bool
)

var playCmd = &cobra.Command{
	Use:   "play <scene>",
	Short: "Play a scene into a live shell",
	Long: "Play types a scene's commands into a fresh shell subprocess with\n" +
		"human-like keystroke timing. While playing, control keys pause, step,\n" +
		"skip, and abort; progress is snapshotted so an interrupted session can\n" +
		"be resumed later.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		sc, err := e.scenes.Load(args[0])
		if err != nil {
			return err
		}

		seed := playSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		sess, err := playback.NewSession(sc, seed)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "playing %s (session %s, seed %d)\n",
			sc.Name, sess.ID, seed)

		return runSession(cmd.Context(), e, sc, sess, playOptions{
			speed:     playSpeed,
			shellPath: playShell,
			noInput:   playNoInput || e.cfg.NoInput,
			stepMode:  playStep,
		})
	},
}

func init() {
	playCmd.Flags().Float64Var(&playSpeed, "speed", 0, "speed multiplier (divides delays; 0 uses config)")
	playCmd.Flags().Int64Var(&playSeed, "seed", 0, "jitter seed (0 picks a random one)")
	playCmd.Flags().StringVar(&playShell, "shell", "", "shell binary (default from config, then /bin/bash)")
	playCmd.Flags().BoolVar(&playNoInput, "no-input", false, "disable control keys")
	playCmd.Flags().BoolVar(&playStep, "step", false, "pause after every step")
	rootCmd.AddCommand(playCmd)
}
