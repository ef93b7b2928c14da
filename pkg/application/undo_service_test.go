package application

import (
	"context"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/architect/pkg/domain"
)

func newUndoFixture(tasks ...domain.Task) (*mockBackend, *ExecutionService, *UndoService) {
	backend := newMockBackend(tasks...)
	exec := NewExecutionService(backend, &recordingAudit{})
	undo := NewUndoService(exec, NewOutcomeLog(), &recordingAudit{})
	return backend, exec, undo
}

func TestUndoLastEmptyLog(t *testing.T) {
	_, _, undo := newUndoFixture()
	result, err := undo.UndoLast(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Errorf("result = %+v, want nil for an empty log", result)
	}
}

func TestUndoRestoresCompletedTask(t *testing.T) {
	backend, exec, undo := newUndoFixture(domain.Task{ID: "1", Content: "alpha"})
	ctx := context.Background()

	outcomes, err := exec.Commit(ctx, []domain.Action{
		{Type: domain.ActionCompleteTask, TargetID: "1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	undo.Record(outcomes)

	if !backend.task("1").Completed {
		t.Fatal("commit did not complete the task")
	}

	result, err := undo.UndoLast(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || len(result.Outcomes) != 1 {
		t.Fatalf("result = %+v, want one compensating outcome", result)
	}
	if backend.task("1").Completed {
		t.Error("undo did not reopen the task")
	}
}

func TestUndoRestoresRecurringSchedule(t *testing.T) {
	backend, exec, undo := newUndoFixture(domain.Task{
		ID: "1", Content: "weekly report",
		Due: &domain.Due{Date: "2026-03-06", String: "every friday", Recurring: true},
	})
	ctx := context.Background()

	outcomes, err := exec.Commit(ctx, []domain.Action{
		{Type: domain.ActionCompleteTask, TargetID: "1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	undo.Record(outcomes)

	result, err := undo.UndoLast(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Reopen plus a due restore.
	if len(result.Outcomes) != 2 {
		t.Fatalf("got %d compensating outcomes, want 2", len(result.Outcomes))
	}
	restored := backend.task("1")
	if restored.Completed {
		t.Error("task still completed after undo")
	}
	if restored.Due == nil || restored.Due.String != "every friday" {
		t.Errorf("due = %+v, want the recurrence rule back", restored.Due)
	}
}

func TestUndoDeletesCreatedTask(t *testing.T) {
	backend, exec, undo := newUndoFixture()
	ctx := context.Background()

	outcomes, err := exec.Commit(ctx, []domain.Action{
		{Type: domain.ActionCreateTask, Params: domain.ActionParams{Content: strPtr("ephemeral")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	createdID := outcomes[0].Result.CreatedID
	if createdID == "" {
		t.Fatal("create returned no id")
	}
	undo.Record(outcomes)

	if _, err := undo.UndoLast(ctx); err != nil {
		t.Fatal(err)
	}
	if got := backend.task(createdID); got.ID != "" {
		t.Errorf("created task %s still exists after undo", createdID)
	}
}

func TestUndoSkipsDeletes(t *testing.T) {
	_, exec, undo := newUndoFixture(
		domain.Task{ID: "1", Content: "victim"},
		domain.Task{ID: "2", Content: "bystander"},
	)
	ctx := context.Background()

	outcomes, err := exec.Commit(ctx, []domain.Action{
		{Type: domain.ActionDeleteTask, TargetID: "1"},
		{Type: domain.ActionCompleteTask, TargetID: "2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	undo.Record(outcomes)

	result, err := undo.UndoLast(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("got %d skipped, want the delete reported", len(result.Skipped))
	}
	s := result.Skipped[0]
	if s.Status != domain.StatusSkipped || s.Reason != domain.ReasonNotUndoable {
		t.Errorf("skipped = %+v", s)
	}
	if len(result.Outcomes) != 1 {
		t.Errorf("the completion should still be compensated, got %d outcomes", len(result.Outcomes))
	}
}

func TestUndoRestoresLabelSet(t *testing.T) {
	backend, exec, undo := newUndoFixture(domain.Task{
		ID: "1", Content: "labelled", Labels: []string{"work", "deep"},
	})
	ctx := context.Background()

	outcomes, err := exec.Commit(ctx, []domain.Action{
		{Type: domain.ActionAddLabel, TargetID: "1", Params: domain.ActionParams{Label: "next"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	undo.Record(outcomes)

	if _, err := undo.UndoLast(ctx); err != nil {
		t.Fatal(err)
	}
	if got := backend.task("1").Labels; !reflect.DeepEqual(got, []string{"work", "deep"}) {
		t.Errorf("labels = %v, want the prior set restored", got)
	}
}

func TestUndoRestoresMove(t *testing.T) {
	backend, exec, undo := newUndoFixture(domain.Task{
		ID: "1", Content: "moving", ProjectID: "p1", SectionID: "s1",
	})
	ctx := context.Background()

	outcomes, err := exec.Commit(ctx, []domain.Action{
		{Type: domain.ActionMoveTask, TargetID: "1", Params: domain.ActionParams{ProjectID: "p2"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	undo.Record(outcomes)

	if _, err := undo.UndoLast(ctx); err != nil {
		t.Fatal(err)
	}
	got := backend.task("1")
	if got.ProjectID != "p1" || got.SectionID != "s1" {
		t.Errorf("task at %s/%s, want p1/s1 restored", got.ProjectID, got.SectionID)
	}
}

func TestUndoRestoresOnlyUpdatedFields(t *testing.T) {
	backend, exec, undo := newUndoFixture(domain.Task{
		ID: "1", Content: "original", Description: "keep me", Priority: 2,
	})
	ctx := context.Background()

	outcomes, err := exec.Commit(ctx, []domain.Action{
		{Type: domain.ActionUpdateTask, TargetID: "1",
			Params: domain.ActionParams{Content: strPtr("renamed")}},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Simulate an unrelated remote edit between commit and undo.
	backend.mu.Lock()
	backend.tasks["1"].Description = "edited elsewhere"
	backend.mu.Unlock()

	undo.Record(outcomes)
	if _, err := undo.UndoLast(ctx); err != nil {
		t.Fatal(err)
	}

	got := backend.task("1")
	if got.Content != "original" {
		t.Errorf("content = %q, want original restored", got.Content)
	}
	if got.Description != "edited elsewhere" {
		t.Error("undo touched a field the update never captured")
	}
}

func TestOutcomeLogIgnoresEmptyBatches(t *testing.T) {
	log := NewOutcomeLog()
	log.Push([]domain.ActionOutcome{
		{Action: domain.Action{Type: domain.ActionCompleteTask, TargetID: "1"},
			Status: domain.StatusFailed, Reason: domain.ReasonStaleTarget},
	})
	if log.Depth() != 0 {
		t.Error("a batch with no applied outcome must not be recorded")
	}

	log.Push([]domain.ActionOutcome{
		{Action: domain.Action{Type: domain.ActionCompleteTask, TargetID: "1"},
			Success: true, Status: domain.StatusApplied},
	})
	if log.Depth() != 1 {
		t.Error("an applied batch must be recorded")
	}
	if _, ok := log.Pop(); !ok {
		t.Error("Pop should return the recorded batch")
	}
	if _, ok := log.Pop(); ok {
		t.Error("Pop on an empty log should report false")
	}
}
