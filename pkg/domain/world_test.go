package domain

import (
	"strings"
	"testing"
	"time"
)

func testWorldOptions(today time.Time) RenderOptions {
	opts := DefaultRenderOptions()
	opts.Today = today
	opts.FilterThreshold = 3 // force filtering with small fixtures
	return opts
}

func TestNewWorldStateLookups(t *testing.T) {
	tasks := []Task{
		{ID: "1", Content: "alpha", ProjectID: "p1"},
		{ID: "2", Content: "beta", ProjectID: "p2"},
	}
	projects := []Project{
		{ID: "p1", Name: "Inbox", IsInbox: true},
		{ID: "p2", Name: "Work"},
	}
	sections := []Section{{ID: "s1", ProjectID: "p2", Name: "Backlog"}}

	w := NewWorldState(tasks, projects, sections, DefaultRenderOptions())

	if got, ok := w.FindTask("2"); !ok || got.Content != "beta" {
		t.Errorf("FindTask(2) = %+v, %v", got, ok)
	}
	if _, ok := w.FindTask("missing"); ok {
		t.Error("FindTask should miss unknown ids")
	}
	if !w.HasProject("p1") || w.HasProject("p9") {
		t.Error("HasProject misreported")
	}
	if !w.HasSection("s1") {
		t.Error("HasSection(s1) = false")
	}
	if w.InboxProjectID() != "p1" {
		t.Errorf("InboxProjectID() = %q, want p1", w.InboxProjectID())
	}
}

func TestRenderContextFiltering(t *testing.T) {
	today := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "1", Content: "overdue report", ProjectID: "p2", Priority: 1,
			Due: &Due{Date: "2026-02-20"}},
		{ID: "2", Content: "due soon", ProjectID: "p2", Priority: 1,
			Due: &Due{Date: "2026-03-05"}},
		{ID: "3", Content: "urgent thing", ProjectID: "p2", Priority: 4},
		{ID: "4", Content: "inbox item", ProjectID: "p1", Priority: 1},
		{ID: "5", Content: "someday maybe", ProjectID: "p2", Priority: 1,
			Due: &Due{Date: "2027-01-01"}},
		{ID: "6", Content: "low background", ProjectID: "p2", Priority: 1},
	}
	projects := []Project{
		{ID: "p1", Name: "Inbox", IsInbox: true},
		{ID: "p2", Name: "Work"},
	}

	w := NewWorldState(tasks, projects, nil, testWorldOptions(today))
	ctx := w.RenderedContext

	for _, want := range []string{"overdue report", "due soon", "urgent thing", "inbox item"} {
		if !strings.Contains(ctx, want) {
			t.Errorf("rendered context missing focus task %q", want)
		}
	}
	for _, hidden := range []string{"someday maybe", "low background"} {
		if strings.Contains(ctx, hidden) {
			t.Errorf("rendered context should hide %q", hidden)
		}
	}
	if !strings.Contains(ctx, "Work: 2 other tasks hidden") {
		t.Errorf("rendered context missing hidden summary:\n%s", ctx)
	}
}

func TestRenderContextSmallListShowsEverything(t *testing.T) {
	today := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	opts := DefaultRenderOptions()
	opts.Today = today

	tasks := []Task{
		{ID: "1", Content: "someday maybe", ProjectID: "p1", Priority: 1,
			Due: &Due{Date: "2027-01-01"}},
	}
	w := NewWorldState(tasks, []Project{{ID: "p1", Name: "Work"}}, nil, opts)

	if !strings.Contains(w.RenderedContext, "someday maybe") {
		t.Error("below the filter threshold every task should be shown")
	}
}

func TestRenderContextDeterministic(t *testing.T) {
	today := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tasks := []Task{{ID: "1", Content: "alpha", ProjectID: "p2", Priority: 4}}
	projects := []Project{
		{ID: "p2", Name: "Work"},
		{ID: "p1", Name: "Inbox", IsInbox: true},
	}

	a := NewWorldState(tasks, projects, nil, testWorldOptions(today))
	b := NewWorldState(tasks, []Project{projects[1], projects[0]}, nil, testWorldOptions(today))
	if a.RenderedContext != b.RenderedContext {
		t.Error("identical data must render identically regardless of fetch order")
	}
}
