package cli

import (
	"fmt"

	"github.com/felixgeelhaar/architect/pkg/storage"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace status",
	Long:  `Shows the workspace state, live backend counts, active review sessions, and usage totals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getWorkspaceRoot()
		if err != nil {
			return err
		}
		repo := storage.NewFilesystemRepository(root)
		if !repo.IsInitialized() {
			fmt.Println("Workspace is not initialized. Run 'architect init' first.")
			return nil
		}

		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close()

		fmt.Printf("Workspace: %s\n", root)

		world, err := services.Backend.FetchState(cmd.Context())
		if err != nil {
			fmt.Printf("Backend:   unreachable (%v)\n", err)
		} else {
			fmt.Printf("Backend:   %d tasks, %d projects, %d sections (fetched %s)\n",
				len(world.Tasks), len(world.Projects), len(world.Sections),
				world.FetchedAt.Format("15:04:05"))
		}

		sessions, err := services.Review.ActiveSessions()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("Reviews:   no active session")
		} else {
			fmt.Printf("Reviews:   %d active\n", len(sessions))
			for _, id := range sessions {
				fmt.Printf("  - %s\n", id)
			}
		}

		stats, err := services.Usage.GetUsage()
		if err != nil {
			return err
		}
		fmt.Printf("Usage:     %d commands", stats.TotalCommands)
		if !stats.LastCommandAt.IsZero() {
			fmt.Printf(", last at %s", stats.LastCommandAt.Format("2006-01-02 15:04"))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}
