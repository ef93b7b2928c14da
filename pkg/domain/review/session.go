package review

import (
	"time"
)

// SessionStatus tracks the lifecycle of a review session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// Decision is what the user chose to do about one flagged task during the
// honesty step.
type Decision string

const (
	DecisionReschedule Decision = "reschedule"
	DecisionComplete   Decision = "complete"
	DecisionKeep       Decision = "keep"
)

// Resolution records one per-task decision made during a step.
type Resolution struct {
	TaskID    string   `json:"task_id"`
	Decision  Decision `json:"decision"`
	DueString string   `json:"due_string,omitempty"` // required for reschedule
}

// StepInput is the user input handed to CompleteStep. Which fields are
// required depends on the step; see ValidateInput.
type StepInput struct {
	Notes           string            `json:"notes,omitempty"`
	CapturedCount   int               `json:"captured_count,omitempty"`   // clear_inbox
	Resolutions     []Resolution      `json:"resolutions,omitempty"`      // active_honesty
	FocusAreas      []string          `json:"focus_areas,omitempty"`      // plan_next_week
	TopPriorities   []string          `json:"top_priorities,omitempty"`   // plan_next_week
	SelectedTaskIDs []string          `json:"selected_task_ids,omitempty"`
	SkippedAreas    map[string]string `json:"skipped_areas,omitempty"` // area -> reason
}

// StepResult is the persisted record of one completed step.
type StepResult struct {
	StepID      string    `json:"step_id"`
	CompletedAt time.Time `json:"completed_at"`
	Input       StepInput `json:"input"`
}

// PlanDraft accumulates the weekly plan as the session progresses.
type PlanDraft struct {
	FocusAreas      []string          `json:"focus_areas,omitempty"`
	TopPriorities   []string          `json:"top_priorities,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	SelectedTaskIDs []string          `json:"selected_task_ids,omitempty"`
	SkippedAreas    map[string]string `json:"skipped_areas,omitempty"`
}

// Session is persisted progress through the fixed-stage weekly review.
// CurrentStep only ever advances; a session with CurrentStep == len(Steps)
// is terminal and immutable thereafter.
type Session struct {
	ID          string        `json:"id"`
	Status      SessionStatus `json:"status"`
	CurrentStep int           `json:"current_step"`
	StepResults []StepResult  `json:"step_results"`
	PlanDraft   PlanDraft     `json:"plan_draft"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Complete reports whether every step has been finished.
func (s *Session) Complete() bool {
	return s.CurrentStep >= len(Steps)
}

// CurrentStepID returns the id of the step the session is waiting on, or ""
// when the session is terminal.
func (s *Session) CurrentStepID() string {
	if s.Complete() {
		return ""
	}
	return Steps[s.CurrentStep].ID
}

// ResultFor returns the recorded result for a step id, if the step was
// already completed in this session.
func (s *Session) ResultFor(stepID string) (StepResult, bool) {
	for _, r := range s.StepResults {
		if r.StepID == stepID {
			return r, true
		}
	}
	return StepResult{}, false
}
