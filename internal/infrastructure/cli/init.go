package cli

import (
	"fmt"

	"github.com/felixgeelhaar/architect/pkg/storage"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an architect workspace in this directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getWorkspaceRoot()
		if err != nil {
			return err
		}
		repo := storage.NewFilesystemRepository(root)

		if repo.IsInitialized() {
			fmt.Println("Workspace is already initialized.")
			return nil
		}

		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		fmt.Println("Initialized architect workspace in .architect/")
		fmt.Println("Next steps:")
		fmt.Println("  - export TODOIST_API_TOKEN=<token>")
		fmt.Println("  - architect ai configure --provider gemini --model gemini-1.5-pro")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
