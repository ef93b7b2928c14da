package cli

import (
	"fmt"

	"github.com/felixgeelhaar/architect/pkg/plugin/contract"
	"github.com/spf13/cobra"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Work with backend plugins",
}

var pluginVerifyCmd = &cobra.Command{
	Use:   "verify <binary>",
	Short: "Run the backend contract suite against a plugin binary",
	Long: `Loads the given plugin binary and runs every contract assertion a
backend must satisfy: init handling, state fetch, missing-task semantics,
create read-back, and unknown-target errors.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suite := contract.NewContractSuite()
		result, err := suite.RunBinary(args[0])
		if err != nil {
			return err
		}

		for _, r := range result.Results {
			mark := "PASS"
			if !r.Passed {
				mark = "FAIL"
			}
			fmt.Printf("[%s] %s", mark, r.Name)
			if r.Message != "" {
				fmt.Printf(": %s", r.Message)
			}
			fmt.Println()
		}
		fmt.Printf("\n%d passed, %d failed\n", result.Passed, result.Failed)
		if result.Failed > 0 {
			return fmt.Errorf("plugin does not satisfy the backend contract")
		}
		return nil
	},
}

func init() {
	pluginCmd.AddCommand(pluginVerifyCmd)
	RootCmd.AddCommand(pluginCmd)
}
