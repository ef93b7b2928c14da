package review

import (
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/architect/pkg/domain"
)

// Candidate is a task worth considering for next week's plan, with the
// reasons it qualified.
type Candidate struct {
	Task    domain.Task `json:"task"`
	Reasons []string    `json:"reasons"`
}

// AreaCoverage reports how well the current selection serves one life area.
type AreaCoverage struct {
	Area           string `json:"area"`
	ActiveCount    int    `json:"active_count"`
	OverdueCount   int    `json:"overdue_count"`
	CandidateCount int    `json:"candidate_count"`
	SelectedCount  int    `json:"selected_count"`
	RequiredMin    int    `json:"required_min"`
	Status         string `json:"status"` // ok, missing, skipped
	SkipReason     string `json:"skip_reason,omitempty"`
}

// BuildCandidates selects plan candidates: overdue, due within a week,
// high priority, or sitting in the inbox.
func BuildCandidates(world *domain.WorldState, profile *Profile, now time.Time) []Candidate {
	var out []Candidate
	today := now.Truncate(24 * time.Hour)
	inboxID := world.InboxProjectID()

	for _, t := range world.Tasks {
		var reasons []string

		if t.Due != nil && t.Due.Date != "" {
			if due, err := time.Parse("2006-01-02", t.Due.Date); err == nil {
				diff := int(due.Sub(today).Hours() / 24)
				if diff < 0 {
					reasons = append(reasons, "overdue")
				} else if diff <= 7 {
					reasons = append(reasons, "due_soon")
				}
			}
		}
		if t.Priority >= 3 {
			reasons = append(reasons, "high_priority")
		}
		if inboxID != "" && t.ProjectID == inboxID {
			reasons = append(reasons, "inbox")
		}

		if len(reasons) > 0 {
			out = append(out, Candidate{Task: t, Reasons: reasons})
		}
	}
	return out
}

// ComputeAreaCoverage reports, per configured area, how many tasks exist,
// how many qualified as candidates, and how many the user selected.
func ComputeAreaCoverage(world *domain.WorldState, profile *Profile, candidates []Candidate, selectedIDs []string, now time.Time) []AreaCoverage {
	if len(profile.WeeklyTouches) == 0 {
		return nil
	}

	coverage := make(map[string]*AreaCoverage, len(profile.WeeklyTouches))
	order := make([]string, 0, len(profile.WeeklyTouches))
	for area, min := range profile.WeeklyTouches {
		coverage[area] = &AreaCoverage{Area: area, RequiredMin: min, Status: "ok"}
		order = append(order, area)
	}

	areaOf := func(projectID string) *AreaCoverage {
		name := projectName(world, projectID)
		if name == "" {
			return nil
		}
		return coverage[profile.AreaForProject(name)]
	}

	today := now.Format("2006-01-02")
	for _, t := range world.Tasks {
		cov := areaOf(t.ProjectID)
		if cov == nil {
			continue
		}
		cov.ActiveCount++
		if t.Due != nil && t.Due.Date != "" && t.Due.Date < today {
			cov.OverdueCount++
		}
	}
	for _, c := range candidates {
		if cov := areaOf(c.Task.ProjectID); cov != nil {
			cov.CandidateCount++
		}
	}

	selected := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}
	for _, t := range world.Tasks {
		if selected[t.ID] {
			if cov := areaOf(t.ProjectID); cov != nil {
				cov.SelectedCount++
			}
		}
	}

	var out []AreaCoverage
	for _, area := range order {
		cov := coverage[area]
		if cov.SelectedCount < cov.RequiredMin {
			cov.Status = "missing"
		}
		out = append(out, *cov)
	}
	sortCoverage(out)
	return out
}

// CheckCoverageGate blocks plan completion while an area is under its
// minimum and not explicitly skipped with a reason.
func CheckCoverageGate(coverage []AreaCoverage, skippedAreas map[string]string) []Issue {
	var issues []Issue
	for i := range coverage {
		cov := &coverage[i]
		if cov.Status != "missing" {
			continue
		}
		if reason, ok := skippedAreas[cov.Area]; ok {
			cov.Status = "skipped"
			cov.SkipReason = reason
			continue
		}
		issues = append(issues, Issue{
			ID:          "missing_coverage_" + cov.Area,
			Title:       fmt.Sprintf("Missing Coverage: %s", cov.Area),
			Description: fmt.Sprintf("You need %d tasks for %s, but selected %d.", cov.RequiredMin, cov.Area, cov.SelectedCount),
			Severity:    "high",
		})
	}
	return issues
}

func sortCoverage(cov []AreaCoverage) {
	sort.Slice(cov, func(i, j int) bool { return cov[i].Area < cov[j].Area })
}
