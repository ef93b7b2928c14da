package review

// Step is one fixed point in the review workflow's ordered sequence. The
// sequence itself is fixed by design; it is not user-programmable.
type Step struct {
	ID          string
	Title       string
	Description string
}

// Steps is the fixed ordered list of review stages.
var Steps = []Step{
	{
		ID:          StepClearInbox,
		Title:       "Get Clear",
		Description: "Process your physical and digital inboxes. Get everything into the task list.",
	},
	{
		ID:          StepActiveHonesty,
		Title:       "Active Honesty",
		Description: "Review overdue tasks and stale items. Be honest about what you can do.",
	},
	{
		ID:          StepCalendarReview,
		Title:       "Calendar Review",
		Description: "Look at the past 2 weeks (what did I miss?) and the next 2 weeks (what's coming?).",
	},
	{
		ID:          StepPlanNextWeek,
		Title:       "Plan Next Week",
		Description: "Select focus areas and top priorities for the coming week.",
	},
}

const (
	StepClearInbox     = "clear_inbox"
	StepActiveHonesty  = "active_honesty"
	StepCalendarReview = "calendar_review"
	StepPlanNextWeek   = "plan_next_week"
)

// StepAt returns the step at the given index.
func StepAt(i int) (Step, bool) {
	if i < 0 || i >= len(Steps) {
		return Step{}, false
	}
	return Steps[i], true
}
