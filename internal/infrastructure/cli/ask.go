package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/architect/pkg/domain"
	"github.com/spf13/cobra"
)

var askYes bool

var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Translate a natural-language request into task changes",
	Long: `Ask sends your request plus a snapshot of your current tasks to the
configured AI provider. Proposed changes are previewed first; nothing
touches your task list until you confirm.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close()
		_ = services.Usage.IncrementCommand()

		ctx := cmd.Context()
		request := strings.Join(args, " ")

		fmt.Println("Fetching current state...")
		world, err := services.Backend.FetchState(ctx)
		if err != nil {
			return MapError(err)
		}

		fmt.Println("Thinking...")
		analysis, err := services.Translator.Translate(ctx, world, request)
		if err != nil {
			return MapError(err)
		}

		if analysis.Thought != "" {
			fmt.Printf("\n%s\n", analysis.Thought)
		}
		for _, r := range analysis.Rejected {
			fmt.Printf("Dropped %s: %s\n", r.Action.Describe(), r.Reason)
		}

		if len(analysis.Actions) == 0 {
			fmt.Println("\nNo changes proposed.")
			return nil
		}

		fmt.Printf("\nProposed changes (%d):\n", len(analysis.Actions))
		preview := services.Execution.Preview(analysis.Actions, world)
		printOutcomes(preview)

		var committable []domain.Action
		for _, o := range preview {
			if o.Success {
				committable = append(committable, o.Action)
			}
		}
		if len(committable) == 0 {
			fmt.Println("Nothing to commit.")
			return nil
		}

		if !askYes && !confirm(fmt.Sprintf("Apply %d change(s)?", len(committable))) {
			fmt.Println("Aborted. Nothing was changed.")
			return nil
		}

		outcomes, err := services.Execution.Commit(ctx, committable)
		if err != nil {
			return MapError(err)
		}
		fmt.Println("\nResults:")
		printOutcomes(outcomes)
		services.Undo.Record(outcomes)

		if !askYes && services.OutcomeLog.Depth() > 0 && confirm("Undo this batch?") {
			result, err := services.Undo.UndoLast(ctx)
			if err != nil {
				return MapError(err)
			}
			if result != nil {
				fmt.Println("\nUndo results:")
				printOutcomes(result.Outcomes)
				printOutcomes(result.Skipped)
			}
		}

		return nil
	},
}

func printOutcomes(outcomes []domain.ActionOutcome) {
	for _, o := range outcomes {
		marker := "ok"
		switch o.Status {
		case domain.StatusFailed:
			marker = "FAILED"
		case domain.StatusSkipped:
			marker = "skipped"
		case domain.StatusSimulated:
			marker = "preview"
		}
		line := fmt.Sprintf("  [%s] %s", marker, o.Action.Describe())
		if o.Message != "" && o.Status != domain.StatusApplied {
			line += " - " + o.Message
		}
		if o.Reason != "" {
			line += fmt.Sprintf(" (%s)", o.Reason)
		}
		fmt.Println(line)
	}
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	askCmd.Flags().BoolVarP(&askYes, "yes", "y", false, "apply proposed changes without prompting")
	RootCmd.AddCommand(askCmd)
}
