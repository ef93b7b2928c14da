package review

import (
	"testing"

	"github.com/felixgeelhaar/architect/pkg/domain"
)

func TestBuildCandidates(t *testing.T) {
	world := testWorld([]domain.Task{
		{ID: "1", Content: "overdue", ProjectID: "p-work", Due: &domain.Due{Date: "2026-02-01"}},
		{ID: "2", Content: "this week", ProjectID: "p-work", Due: &domain.Due{Date: "2026-03-05"}},
		{ID: "3", Content: "urgent", ProjectID: "p-work", Priority: 4},
		{ID: "4", Content: "inbox", ProjectID: "p-inbox"},
		{ID: "5", Content: "far future", ProjectID: "p-work", Due: &domain.Due{Date: "2027-01-01"}},
		{ID: "6", Content: "background", ProjectID: "p-work", Priority: 1},
	})

	candidates := BuildCandidates(world, DefaultProfile(), testNow)
	byID := map[string][]string{}
	for _, c := range candidates {
		byID[c.Task.ID] = c.Reasons
	}

	if len(candidates) != 4 {
		t.Fatalf("got %d candidates, want 4: %v", len(candidates), byID)
	}
	if byID["1"][0] != "overdue" {
		t.Errorf("task 1 reasons = %v", byID["1"])
	}
	if byID["2"][0] != "due_soon" {
		t.Errorf("task 2 reasons = %v", byID["2"])
	}
	if byID["3"][0] != "high_priority" {
		t.Errorf("task 3 reasons = %v", byID["3"])
	}
	if byID["4"][0] != "inbox" {
		t.Errorf("task 4 reasons = %v", byID["4"])
	}
}

func TestComputeAreaCoverage(t *testing.T) {
	world := testWorld([]domain.Task{
		{ID: "1", Content: "late", ProjectID: "p-work", Due: &domain.Due{Date: "2026-02-01"}},
		{ID: "2", Content: "also work", ProjectID: "p-work"},
		{ID: "3", Content: "gym", ProjectID: "p-health", Priority: 4},
	})

	profile := DefaultProfile()
	profile.Areas = map[string][]string{
		"Career": {"Work"},
		"Body":   {"Health"},
	}
	profile.WeeklyTouches = map[string]int{"Career": 1, "Body": 2}

	candidates := BuildCandidates(world, profile, testNow)
	coverage := ComputeAreaCoverage(world, profile, candidates, []string{"1"}, testNow)

	if len(coverage) != 2 {
		t.Fatalf("got %d areas, want 2", len(coverage))
	}
	// Sorted by area name: Body before Career.
	body, career := coverage[0], coverage[1]
	if body.Area != "Body" || career.Area != "Career" {
		t.Fatalf("coverage order = %s, %s", coverage[0].Area, coverage[1].Area)
	}

	if career.ActiveCount != 2 || career.OverdueCount != 1 {
		t.Errorf("Career = %+v", career)
	}
	if career.SelectedCount != 1 || career.Status != "ok" {
		t.Errorf("Career = %+v, want 1 selected, ok", career)
	}
	if body.SelectedCount != 0 || body.Status != "missing" {
		t.Errorf("Body = %+v, want missing", body)
	}
}

func TestComputeAreaCoverageWithoutTouches(t *testing.T) {
	world := testWorld(nil)
	if got := ComputeAreaCoverage(world, DefaultProfile(), nil, nil, testNow); got != nil {
		t.Errorf("no configured touches should yield nil, got %v", got)
	}
}
