package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var projectPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "architect",
	Version: Version,
	Short:   "A safety-gated AI assistant for your task list",
	Long: `Architect manages a Todoist-style task list through natural-language
requests interpreted by an LLM. Every proposed change is previewed and
committed only with your explicit approval, and committed batches can be
undone.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&projectPath, "workspace", "", "workspace root (defaults to the current directory)")
}
