package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simon/scenecast/internal/store"
)

var removeAll bool

var removeCmd = &cobra.Command{
	Use:     "remove [session|@N...]",
	Aliases: []string{"rm"},
	Short:   "Delete recorded sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !removeAll {
			return fmt.Errorf("nothing to remove: name sessions or pass --all")
		}
		if len(args) > 0 && removeAll {
			return fmt.Errorf("--all takes no session arguments")
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ids, err := e.sessionIDs()
		if err != nil {
			return err
		}

		targets := ids
		if !removeAll {
			targets, err = resolveReferences(args, ids)
			if err != nil {
				return err
			}
		}

		for _, id := range targets {
			if err := e.snaps.Remove(id); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
				return err
			}
			if err := e.index.Delete(id); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "removed %s\n", id)
		}
		if removeAll {
			fmt.Fprintf(cmd.ErrOrStderr(), "removed %d sessions\n", len(targets))
		}
		return nil
	},
}

func init() {
	removeCmd.Flags().BoolVar(&removeAll, "all", false, "remove every recorded session")
	rootCmd.AddCommand(removeCmd)
}
