package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simon/scenecast/internal/clipboard"
)

var (
	showScript bool
	showCopy   bool
)

var showCmd = &cobra.Command{
	Use:   "show [session|@N...]",
	Short: "Print a recorded session transcript",
	Long: "Show replays a session's transcript to stdout: commands, their\n" +
		"output, and the narration that ran between them. With no arguments it\n" +
		"shows the most recent session. --script reduces the output to just\n" +
		"the commands; --copy also places the rendering on the clipboard.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		refs := args
		if len(refs) == 0 {
			refs = []string{"@"}
		}
		ids, err := e.sessionIDs()
		if err != nil {
			return err
		}
		resolved, err := resolveReferences(refs, ids)
		if err != nil {
			return err
		}

		var copied strings.Builder
		for _, id := range resolved {
			snap, err := e.snaps.Read(id)
			if err != nil {
				return err
			}
			if showScript {
				printScript(cmd.OutOrStdout(), cmd.ErrOrStderr(), snap)
			} else {
				printTranscript(cmd.OutOrStdout(), cmd.ErrOrStderr(), snap)
			}
			if showCopy {
				if showScript {
					copied.WriteString(renderScriptPlain(snap))
				} else {
					copied.WriteString(renderTranscriptPlain(snap))
				}
			}
		}

		if showCopy {
			if err := clipboard.Copy(copied.String()); err != nil {
				// The transcript already printed; a missing clipboard tool
				// shouldn't turn that into a failure.
				fmt.Fprintf(cmd.ErrOrStderr(), "clipboard copy failed: %v\n", err)
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showScript, "script", false, "print only the commands")
	showCmd.Flags().BoolVar(&showCopy, "copy", false, "also copy the rendering to the clipboard")
	rootCmd.AddCommand(showCmd)
}
