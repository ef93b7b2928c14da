package domain

import (
	"reflect"
	"testing"
)

func TestSnapshotForAction(t *testing.T) {
	current := Task{
		ID:          "42",
		Content:     "write report",
		Description: "quarterly numbers",
		Priority:    2,
		Labels:      []string{"work", "deep"},
		Due:         &Due{Date: "2026-03-06", String: "every friday", Recurring: true},
		ProjectID:   "p1",
		SectionID:   "s1",
		Completed:   false,
	}

	t.Run("update captures only named fields", func(t *testing.T) {
		a := Action{Type: ActionUpdateTask, TargetID: "42",
			Params: ActionParams{Content: strPtr("new"), Priority: intPtr(4)}}
		snap := SnapshotForAction(a, current)
		if snap == nil {
			t.Fatal("expected a snapshot")
		}
		want := []SnapshotField{FieldContent, FieldPriority}
		if !reflect.DeepEqual(snap.Fields, want) {
			t.Errorf("Fields = %v, want %v", snap.Fields, want)
		}
		if snap.Content != "write report" || snap.Priority != 2 {
			t.Errorf("snapshot values = %q/%d, want pre-mutation values", snap.Content, snap.Priority)
		}
		if snap.Captured(FieldDue) {
			t.Error("due was not part of the update and must not be captured")
		}
	})

	t.Run("complete captures completion and due", func(t *testing.T) {
		a := Action{Type: ActionCompleteTask, TargetID: "42"}
		snap := SnapshotForAction(a, current)
		if !snap.Captured(FieldCompleted) || !snap.Captured(FieldDue) {
			t.Fatalf("Fields = %v, want completed and due", snap.Fields)
		}
		if snap.Due == nil || !snap.Due.Recurring {
			t.Error("recurring due schedule must be preserved in the snapshot")
		}
	})

	t.Run("move captures project and section", func(t *testing.T) {
		a := Action{Type: ActionMoveTask, TargetID: "42", Params: ActionParams{ProjectID: "p2"}}
		snap := SnapshotForAction(a, current)
		if snap.ProjectID != "p1" || snap.SectionID != "s1" {
			t.Errorf("snapshot = %s/%s, want p1/s1", snap.ProjectID, snap.SectionID)
		}
	})

	t.Run("label actions capture the full label set", func(t *testing.T) {
		a := Action{Type: ActionAddLabel, TargetID: "42", Params: ActionParams{Label: "next"}}
		snap := SnapshotForAction(a, current)
		if !reflect.DeepEqual(snap.Labels, []string{"work", "deep"}) {
			t.Errorf("Labels = %v, want prior set", snap.Labels)
		}
	})

	t.Run("deletes have no snapshot", func(t *testing.T) {
		a := Action{Type: ActionDeleteTask, TargetID: "42"}
		if snap := SnapshotForAction(a, current); snap != nil {
			t.Errorf("delete snapshot = %v, want nil", snap)
		}
	})
}

func TestUndoable(t *testing.T) {
	snap := &TaskSnapshot{TaskID: "42", Fields: []SnapshotField{FieldCompleted}}

	tests := []struct {
		name   string
		action Action
		before *TaskSnapshot
		result *RemoteResult
		want   bool
	}{
		{"complete with snapshot", Action{Type: ActionCompleteTask, TargetID: "42"}, snap, nil, true},
		{"complete without snapshot", Action{Type: ActionCompleteTask, TargetID: "42"}, nil, nil, false},
		{"create with id", Action{Type: ActionCreateTask}, nil, &RemoteResult{CreatedID: "99"}, true},
		{"create without id", Action{Type: ActionCreateTask}, nil, &RemoteResult{}, false},
		{"delete task", Action{Type: ActionDeleteTask, TargetID: "42"}, nil, nil, false},
		{"delete project", Action{Type: ActionDeleteProject, TargetID: "p1"}, nil, nil, false},
		{"comment with id", Action{Type: ActionAddComment, TargetID: "42"}, nil, &RemoteResult{CreatedID: "c1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Undoable(tt.action, tt.before, tt.result); got != tt.want {
				t.Errorf("Undoable() = %v, want %v", got, tt.want)
			}
		})
	}
}
