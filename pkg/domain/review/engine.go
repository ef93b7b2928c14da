package review

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/architect/pkg/domain"
)

// ViewModel is everything a renderer needs to draw the current step. It is
// a pure function of session, world, and profile; computing it has no side
// effects and can be repeated freely on every redraw.
type ViewModel struct {
	Step       Step           `json:"step"`
	Index      int            `json:"index"`
	StepCount  int            `json:"step_count"`
	IsLast     bool           `json:"is_last"`
	Issues     []Issue        `json:"issues,omitempty"`
	Candidates []Candidate    `json:"candidates,omitempty"`
	Coverage   []AreaCoverage `json:"coverage,omitempty"`
	Draft      PlanDraft      `json:"draft"`
	Note       string         `json:"note,omitempty"`
}

// StepViewModel builds the view-model for the session's current step.
func StepViewModel(session *Session, world *domain.WorldState, profile *Profile, now time.Time) (*ViewModel, error) {
	if session.Complete() {
		return nil, domain.ErrSessionComplete
	}
	step := Steps[session.CurrentStep]

	vm := &ViewModel{
		Step:      step,
		Index:     session.CurrentStep,
		StepCount: len(Steps),
		IsLast:    session.CurrentStep == len(Steps)-1,
		Draft:     session.PlanDraft,
	}

	switch step.ID {
	case StepActiveHonesty:
		vm.Issues = append(vm.Issues, CheckActiveHonesty(world, profile, now)...)
		vm.Issues = append(vm.Issues, CheckDueDateIntegrity(world, profile, now)...)
		vm.Issues = append(vm.Issues, CheckWaitingDiscipline(world, profile)...)
	case StepCalendarReview:
		vm.Note = "Check your external calendar app for the past and coming two weeks."
	case StepPlanNextWeek:
		vm.Candidates = BuildCandidates(world, profile, now)
		vm.Coverage = ComputeAreaCoverage(world, profile, vm.Candidates,
			session.PlanDraft.SelectedTaskIDs, now)
		vm.Issues = CheckCoverageGate(vm.Coverage, session.PlanDraft.SkippedAreas)
	}
	return vm, nil
}

// ValidateInput checks a step input against the step's schema. It inspects
// nothing outside the input itself, so a failed validation cannot leave any
// state half-applied.
func ValidateInput(stepID string, input StepInput) error {
	fail := func(format string, args ...interface{}) error {
		return &domain.InvalidStepInputError{StepID: stepID, Reason: fmt.Sprintf(format, args...)}
	}

	switch stepID {
	case StepClearInbox:
		if input.CapturedCount < 0 {
			return fail("captured count cannot be negative")
		}
	case StepActiveHonesty:
		for _, r := range input.Resolutions {
			if r.TaskID == "" {
				return fail("resolution missing task id")
			}
			switch r.Decision {
			case DecisionReschedule:
				if r.DueString == "" {
					return fail("reschedule for task %s needs a new due date", r.TaskID)
				}
			case DecisionComplete, DecisionKeep:
			default:
				return fail("unknown decision %q for task %s", r.Decision, r.TaskID)
			}
		}
	case StepCalendarReview:
		// Free-form notes only.
	case StepPlanNextWeek:
		if len(input.SelectedTaskIDs) == 0 && len(input.SkippedAreas) == 0 {
			return fail("plan needs selected tasks or explicit skip reasons")
		}
		seen := make(map[string]bool, len(input.SelectedTaskIDs))
		for _, id := range input.SelectedTaskIDs {
			if id == "" {
				return fail("selected task id cannot be empty")
			}
			if seen[id] {
				return fail("task %s selected twice", id)
			}
			seen[id] = true
		}
	default:
		return fail("unknown step")
	}
	return nil
}

// ActionsForStep derives the mutations a completed step wants executed.
// The engine never executes them itself; the caller routes them through the
// execution pipeline under the usual preview/commit/undo discipline.
func ActionsForStep(stepID string, input StepInput, profile *Profile) []domain.Action {
	var actions []domain.Action

	switch stepID {
	case StepActiveHonesty:
		for _, r := range input.Resolutions {
			switch r.Decision {
			case DecisionReschedule:
				due := r.DueString
				actions = append(actions, domain.Action{
					Type:     domain.ActionUpdateTask,
					TargetID: r.TaskID,
					Params:   domain.ActionParams{DueString: &due},
				})
			case DecisionComplete:
				actions = append(actions, domain.Action{
					Type:     domain.ActionCompleteTask,
					TargetID: r.TaskID,
				})
			}
		}
	case StepPlanNextWeek:
		label := profile.WeeklyLabel
		if label == "" {
			label = DefaultProfile().WeeklyLabel
		}
		for _, id := range input.SelectedTaskIDs {
			actions = append(actions, domain.Action{
				Type:     domain.ActionAddLabel,
				TargetID: id,
				Params:   domain.ActionParams{Label: label},
			})
		}
	}
	return actions
}

// ApplyInputToDraft folds a completed step's input into the session's plan
// draft.
func ApplyInputToDraft(draft *PlanDraft, stepID string, input StepInput) {
	switch stepID {
	case StepPlanNextWeek:
		if input.FocusAreas != nil {
			draft.FocusAreas = input.FocusAreas
		}
		if input.TopPriorities != nil {
			draft.TopPriorities = input.TopPriorities
		}
		if input.Notes != "" {
			draft.Notes = input.Notes
		}
		if input.SelectedTaskIDs != nil {
			draft.SelectedTaskIDs = input.SelectedTaskIDs
		}
		if input.SkippedAreas != nil {
			if draft.SkippedAreas == nil {
				draft.SkippedAreas = make(map[string]string, len(input.SkippedAreas))
			}
			for area, reason := range input.SkippedAreas {
				draft.SkippedAreas[area] = reason
			}
		}
	}
}
