package cli

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/architect/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/architect/pkg/domain/review"
	"github.com/spf13/cobra"
)

var (
	reviewSessionID  string
	reviewNotes      string
	reviewCaptured   int
	reviewResolve    []string
	reviewSelect     []string
	reviewSkip       []string
	reviewFocus      []string
	reviewPriorities []string
	reviewYes        bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run the guided weekly review",
}

var reviewStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new weekly review session",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close()
		_ = services.Usage.IncrementCommand()

		session, err := services.Review.StartSession()
		if err != nil {
			return err
		}

		fmt.Printf("Started review session %s\n", session.ID)
		return showCurrentStep(cmd, services, session)
	},
}

var reviewStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current step of a review session",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close()

		session, err := resolveSession(services)
		if err != nil {
			return err
		}
		return showCurrentStep(cmd, services, session)
	},
}

var reviewNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Complete the current step and advance the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close()
		_ = services.Usage.IncrementCommand()

		session, err := resolveSession(services)
		if err != nil {
			return err
		}

		input, err := buildStepInput()
		if err != nil {
			return err
		}

		profile, err := services.Workspace.Repo.LoadProfile()
		if err != nil {
			return err
		}

		stepID := session.CurrentStepID()
		actions, err := services.Review.CompleteStep(session, input, profile)
		if err != nil {
			return MapError(err)
		}
		fmt.Printf("Completed step %s.\n", stepID)

		if len(actions) > 0 {
			ctx := cmd.Context()
			world, err := services.Backend.FetchState(ctx)
			if err != nil {
				return MapError(err)
			}

			fmt.Printf("\nChanges from this step (%d):\n", len(actions))
			preview := services.Execution.Preview(actions, world)
			printOutcomes(preview)

			if reviewYes || confirm(fmt.Sprintf("Apply %d change(s)?", len(actions))) {
				outcomes, err := services.Execution.Commit(ctx, actions)
				if err != nil {
					return MapError(err)
				}
				printOutcomes(outcomes)
				services.Undo.Record(outcomes)
			} else {
				fmt.Println("Step changes were not applied.")
			}
		}

		if session.Complete() {
			fmt.Println("\nReview complete. Session archived.")
			printDraft(&session.PlanDraft)
			return nil
		}
		return showCurrentStep(cmd, services, session)
	},
}

var reviewAbandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Abandon an in-progress review session",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close()

		session, err := resolveSession(services)
		if err != nil {
			return err
		}
		if err := services.Review.Abandon(session); err != nil {
			return err
		}
		fmt.Printf("Abandoned session %s. The session document was archived, not deleted.\n", session.ID)
		return nil
	},
}

// resolveSession picks the session named by --session, or the only active
// one when the flag is omitted.
func resolveSession(services *wiring.AppServices) (*review.Session, error) {
	if reviewSessionID != "" {
		return services.Review.Resume(reviewSessionID)
	}

	ids, err := services.Review.ActiveSessions()
	if err != nil {
		return nil, err
	}
	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("no active review session (run 'architect review start')")
	case 1:
		return services.Review.Resume(ids[0])
	default:
		return nil, fmt.Errorf("multiple active sessions (%s); pick one with --session", strings.Join(ids, ", "))
	}
}

func showCurrentStep(cmd *cobra.Command, services *wiring.AppServices, session *review.Session) error {
	if session.Complete() {
		fmt.Println("Session is complete.")
		return nil
	}

	world, err := services.Backend.FetchState(cmd.Context())
	if err != nil {
		return MapError(err)
	}
	profile, err := services.Workspace.Repo.LoadProfile()
	if err != nil {
		return err
	}

	vm, err := services.Review.StepView(session, world, profile)
	if err != nil {
		return err
	}

	fmt.Printf("\nStep %d/%d: %s\n", vm.Index+1, vm.StepCount, vm.Step.Title)
	fmt.Println(vm.Step.Description)
	if vm.Note != "" {
		fmt.Printf("\n%s\n", vm.Note)
	}

	if len(vm.Issues) > 0 {
		fmt.Printf("\nIssues (%d):\n", len(vm.Issues))
		for _, issue := range vm.Issues {
			fmt.Printf("  - [%s] %s: %s\n", issue.Severity, issue.Title, issue.Description)
		}
	}
	if len(vm.Candidates) > 0 {
		fmt.Printf("\nCandidates (%d):\n", len(vm.Candidates))
		for _, c := range vm.Candidates {
			fmt.Printf("  - %s | %s (%s)\n", c.Task.ID, c.Task.Content, strings.Join(c.Reasons, ", "))
		}
	}
	if len(vm.Coverage) > 0 {
		fmt.Println("\nArea coverage:")
		for _, ac := range vm.Coverage {
			line := fmt.Sprintf("  - %s: %d selected / %d required [%s]",
				ac.Area, ac.SelectedCount, ac.RequiredMin, ac.Status)
			if ac.SkipReason != "" {
				line += " (" + ac.SkipReason + ")"
			}
			fmt.Println(line)
		}
	}
	return nil
}

func printDraft(draft *review.PlanDraft) {
	if len(draft.FocusAreas) > 0 {
		fmt.Printf("Focus areas: %s\n", strings.Join(draft.FocusAreas, ", "))
	}
	if len(draft.TopPriorities) > 0 {
		fmt.Printf("Top priorities: %s\n", strings.Join(draft.TopPriorities, ", "))
	}
	if len(draft.SelectedTaskIDs) > 0 {
		fmt.Printf("Selected tasks: %s\n", strings.Join(draft.SelectedTaskIDs, ", "))
	}
	for area, reason := range draft.SkippedAreas {
		fmt.Printf("Skipped %s: %s\n", area, reason)
	}
	if draft.Notes != "" {
		fmt.Printf("Notes: %s\n", draft.Notes)
	}
}

// buildStepInput assembles a StepInput from the flags. Flags the current
// step does not use are rejected by the engine's schema validation.
func buildStepInput() (review.StepInput, error) {
	input := review.StepInput{
		Notes:           reviewNotes,
		CapturedCount:   reviewCaptured,
		FocusAreas:      reviewFocus,
		TopPriorities:   reviewPriorities,
		SelectedTaskIDs: reviewSelect,
	}

	for _, raw := range reviewResolve {
		// task_id=decision or task_id=reschedule:due_string
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			return input, fmt.Errorf("invalid --resolve %q (want task_id=keep|complete|reschedule:<due>)", raw)
		}
		res := review.Resolution{TaskID: parts[0]}
		decision, due, hasDue := strings.Cut(parts[1], ":")
		res.Decision = review.Decision(decision)
		if hasDue {
			res.DueString = due
		}
		input.Resolutions = append(input.Resolutions, res)
	}

	for _, raw := range reviewSkip {
		area, reason, ok := strings.Cut(raw, "=")
		if !ok {
			return input, fmt.Errorf("invalid --skip %q (want area=reason)", raw)
		}
		if input.SkippedAreas == nil {
			input.SkippedAreas = make(map[string]string)
		}
		input.SkippedAreas[area] = reason
	}

	return input, nil
}

func init() {
	reviewCmd.PersistentFlags().StringVar(&reviewSessionID, "session", "", "review session id")

	reviewNextCmd.Flags().StringVar(&reviewNotes, "notes", "", "free-form notes for this step")
	reviewNextCmd.Flags().IntVar(&reviewCaptured, "captured", 0, "number of items captured while clearing the inbox")
	reviewNextCmd.Flags().StringArrayVar(&reviewResolve, "resolve", nil, "resolve a flagged task: task_id=keep|complete|reschedule:<due>")
	reviewNextCmd.Flags().StringSliceVar(&reviewSelect, "select", nil, "task ids selected for next week")
	reviewNextCmd.Flags().StringArrayVar(&reviewSkip, "skip", nil, "skip an area with a reason: area=reason")
	reviewNextCmd.Flags().StringSliceVar(&reviewFocus, "focus", nil, "focus areas for next week")
	reviewNextCmd.Flags().StringSliceVar(&reviewPriorities, "priority", nil, "top priorities for next week")
	reviewNextCmd.Flags().BoolVarP(&reviewYes, "yes", "y", false, "apply step changes without prompting")

	reviewCmd.AddCommand(reviewStartCmd)
	reviewCmd.AddCommand(reviewStatusCmd)
	reviewCmd.AddCommand(reviewNextCmd)
	reviewCmd.AddCommand(reviewAbandonCmd)
	RootCmd.AddCommand(reviewCmd)
}
