package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "List available scenes",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		names, err := e.scenes.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cmd.Println("no scenes yet (create one with: scenecast record <name>)")
			return nil
		}

		for _, name := range names {
			sc, err := e.scenes.Load(name)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", name, headerStyle.Render("(unreadable)"))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", name,
				headerStyle.Render(fmt.Sprintf("%d steps", len(sc.Steps))))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenesCmd)
}
