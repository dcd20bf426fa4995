package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simon/scenecast/internal/control"
	"github.com/simon/scenecast/internal/scene"
	"github.com/simon/scenecast/internal/shell"
)

var recordRun bool

var recordCmd = &cobra.Command{
	Use:   "record <scene>",
	Short: "Author a scene interactively",
	Long: "Record reads commands line by line and saves them as a scene.\n" +
		"Lines starting with # become narration comments, blank lines are\n" +
		"skipped, and EOF (ctrl+d) finishes the recording. With --run each\n" +
		"command is also executed in a live shell so you see its real output\n" +
		"while authoring.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		var bridge *shell.Bridge
		if recordRun {
			bridge, err = shell.Start(cmd.Context(), e.cfg.Shell)
			if err != nil {
				return err
			}
			defer bridge.Terminate(cmd.Context())
			go func() {
				for chunk := range bridge.Output() {
					os.Stdout.Write(chunk)
				}
			}()
		}

		sc, err := recordScene(args[0], control.NewStdinLineSource(os.Stdin), bridge)
		if err != nil {
			return err
		}
		if len(sc.Steps) == 0 {
			return fmt.Errorf("nothing recorded, scene %q not saved", args[0])
		}
		if err := e.scenes.Save(sc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %s (%d steps) to %s\n",
			sc.Name, len(sc.Steps), e.scenes.Path(sc.Name))
		return nil
	},
}

// runner is the subset of the shell bridge recording needs.
type runner interface {
	Send(data []byte) error
}

// recordScene collects steps from lines until EOF. A nil runner records
// without executing.
func recordScene(name string, lines control.LineSource, run runner) (*scene.Scene, error) {
	sc := scene.New(name)
	for {
		line, err := lines.ReadLine("==> ")
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "#"):
			sc.Steps = append(sc.Steps, scene.Step{
				Kind: scene.StepComment,
				Text: strings.TrimSpace(strings.TrimPrefix(trimmed, "#")),
			})
		default:
			sc.Steps = append(sc.Steps, scene.Step{
				Kind: scene.StepCommand,
				Text: trimmed,
			})
			if run != nil {
				if err := run.Send([]byte(trimmed + "\n")); err != nil {
					return nil, fmt.Errorf("shell rejected %q: %w", trimmed, err)
				}
			}
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func init() {
	recordCmd.Flags().BoolVar(&recordRun, "run", false, "execute each command in a live shell while recording")
	rootCmd.AddCommand(recordCmd)
}
