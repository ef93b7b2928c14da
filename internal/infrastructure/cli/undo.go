package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the most recently committed batch",
	Long: `Undo reverses the last committed batch by applying compensating
changes derived from the snapshots taken at commit time. The undo history
lives in process memory only, so this works within an interactive session
(for example the prompt offered after 'architect ask' commits); a fresh
process has nothing to undo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close()

		result, err := services.Undo.UndoLast(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		if result == nil {
			fmt.Println("Nothing to undo in this session.")
			return nil
		}

		printOutcomes(result.Outcomes)
		printOutcomes(result.Skipped)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(undoCmd)
}
