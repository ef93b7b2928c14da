package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/architect/pkg/domain"
)

// Issue is one problem a review rule found in the current world state.
type Issue struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	RelatedTaskID string `json:"related_task_id,omitempty"`
	Severity      string `json:"severity"` // low, medium, high
}

// CheckActiveHonesty flags every overdue task. Overdue work that stays
// overdue is the review's first honesty problem.
func CheckActiveHonesty(world *domain.WorldState, profile *Profile, now time.Time) []Issue {
	var issues []Issue
	today := now.Format("2006-01-02")

	for _, t := range world.Tasks {
		if profile.Excluded(projectName(world, t.ProjectID)) {
			continue
		}
		if t.Due != nil && t.Due.Date != "" && t.Due.Date < today {
			issues = append(issues, Issue{
				ID:            "overdue_" + t.ID,
				Title:         fmt.Sprintf("Overdue Task: %s", t.Content),
				Description:   fmt.Sprintf("Task was due on %s", t.Due.Date),
				RelatedTaskID: t.ID,
				Severity:      "high",
			})
		}
	}
	return issues
}

// CheckDueDateIntegrity flags an unrealistic pile-up of tasks due today.
func CheckDueDateIntegrity(world *domain.WorldState, profile *Profile, now time.Time) []Issue {
	today := now.Format("2006-01-02")
	count := 0
	for _, t := range world.Tasks {
		if t.Due != nil && t.Due.Date == today {
			count++
		}
	}

	max := profile.MaxDueToday
	if max <= 0 {
		max = DefaultProfile().MaxDueToday
	}
	if count <= max {
		return nil
	}
	return []Issue{{
		ID:          "too_many_today",
		Title:       "Overloaded Today",
		Description: fmt.Sprintf("You have %d tasks due today. Is this realistic?", count),
		Severity:    "medium",
	}}
}

// CheckWaitingDiscipline flags delegated ("waiting") tasks without a
// follow-up date. A waiting task with no date is a task nobody will chase.
func CheckWaitingDiscipline(world *domain.WorldState, profile *Profile) []Issue {
	var issues []Issue
	waiting := strings.ToLower(profile.WaitingLabel)
	if waiting == "" {
		return nil
	}

	for _, t := range world.Tasks {
		isWaiting := false
		for _, l := range t.Labels {
			if strings.EqualFold(l, waiting) {
				isWaiting = true
				break
			}
		}
		// Content heuristic catches @waiting markers typed inline.
		if !isWaiting && strings.Contains(strings.ToLower(t.Content), waiting) {
			isWaiting = true
		}

		if isWaiting && t.Due == nil {
			issues = append(issues, Issue{
				ID:            "waiting_no_date_" + t.ID,
				Title:         fmt.Sprintf("Waiting task without date: %s", t.Content),
				Description:   fmt.Sprintf("Tasks labelled %q should have a follow-up date.", profile.WaitingLabel),
				RelatedTaskID: t.ID,
				Severity:      "medium",
			})
		}
	}
	return issues
}

func projectName(world *domain.WorldState, projectID string) string {
	if p, ok := world.Projects[projectID]; ok {
		return p.Name
	}
	return ""
}
