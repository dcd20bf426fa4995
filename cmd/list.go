package cmd

import (
	"github.com/spf13/cobra"

	"github.com/simon/scenecast/internal/playback"
)

const defaultListLimit = 10

var (
	listLimit int
	listFull  bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recorded sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		limit := listLimit
		if listFull {
			limit = -1
		}
		infos, err := e.index.List(limit)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			cmd.Println("no sessions recorded")
			return nil
		}

		maxCommands := 3
		if listFull {
			maxCommands = 0 // unlimited
		}
		for i, info := range infos {
			commands := sessionCommands(e, info.ID)
			printSessionBrief(cmd.OutOrStdout(), i+1, info, commands, maxCommands)
		}
		return nil
	},
}

// sessionCommands pulls the command lines out of a session's snapshot.
// A missing or unreadable snapshot just yields no preview; the index row
// still lists.
func sessionCommands(e *env, id string) []string {
	snap, err := e.snaps.Read(id)
	if err != nil {
		return nil
	}
	var commands []string
	for _, entry := range snap.Transcript {
		if entry.Kind == playback.EntryCommand {
			commands = append(commands, entry.Data)
		}
	}
	return commands
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", defaultListLimit, "number of sessions to show")
	listCmd.Flags().BoolVar(&listFull, "full", false, "show all sessions and all commands")
	rootCmd.AddCommand(listCmd)
}
