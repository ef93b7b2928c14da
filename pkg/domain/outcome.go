package domain

// OutcomeStatus reports how far an action made it through the engine.
type OutcomeStatus string

const (
	// StatusApplied means the remote mutation was issued and acknowledged.
	StatusApplied OutcomeStatus = "applied"
	// StatusSimulated means preview mode validated the action; nothing was sent.
	StatusSimulated OutcomeStatus = "simulated"
	// StatusFailed means the action was attempted (or rejected) and did not apply.
	StatusFailed OutcomeStatus = "failed"
	// StatusSkipped is used by undo for outcomes that carry no snapshot.
	StatusSkipped OutcomeStatus = "skipped"
)

// FailureReason classifies a failed or skipped outcome.
type FailureReason string

const (
	ReasonInvalid     FailureReason = "invalid"
	ReasonStaleTarget FailureReason = "stale_target"
	ReasonRemote      FailureReason = "remote_error"
	ReasonRateLimited FailureReason = "rate_limited"
	ReasonNotUndoable FailureReason = "not_undoable"
)

// SnapshotField names one task field a snapshot captured.
type SnapshotField string

const (
	FieldContent     SnapshotField = "content"
	FieldDescription SnapshotField = "description"
	FieldPriority    SnapshotField = "priority"
	FieldDue         SnapshotField = "due"
	FieldLabels      SnapshotField = "labels"
	FieldProject     SnapshotField = "project"
	FieldSection     SnapshotField = "section"
	FieldCompleted   SnapshotField = "completed"
)

// TaskSnapshot captures the pre-mutation value of every field an action is
// about to change. Fields lists exactly what was captured; undo restores
// those fields and nothing else, so later unrelated remote edits survive an
// undo untouched.
type TaskSnapshot struct {
	TaskID      string          `json:"task_id"`
	Fields      []SnapshotField `json:"fields"`
	Content     string          `json:"content,omitempty"`
	Description string          `json:"description,omitempty"`
	Priority    int             `json:"priority,omitempty"`
	Due         *Due            `json:"due,omitempty"`
	Labels      []string        `json:"labels,omitempty"`
	ProjectID   string          `json:"project_id,omitempty"`
	SectionID   string          `json:"section_id,omitempty"`
	Completed   bool            `json:"completed,omitempty"`
}

// Captured reports whether the snapshot recorded the given field.
func (s *TaskSnapshot) Captured(f SnapshotField) bool {
	if s == nil {
		return false
	}
	for _, have := range s.Fields {
		if have == f {
			return true
		}
	}
	return false
}

// RemoteResult is what the remote collaborator returns for an applied
// action; CreatedID is set for create-style actions so undo can delete the
// entity it brought into existence.
type RemoteResult struct {
	CreatedID string `json:"created_id,omitempty"`
}

// ActionOutcome records the result of attempting one Action. A commit batch
// produces one outcome per input action in input order; outcomes of
// successful commits feed the undo manager.
type ActionOutcome struct {
	Action   Action        `json:"action"`
	Success  bool          `json:"success"`
	Status   OutcomeStatus `json:"status"`
	Reason   FailureReason `json:"reason,omitempty"`
	Message  string        `json:"message,omitempty"`
	Before   *TaskSnapshot `json:"before,omitempty"`
	Result   *RemoteResult `json:"result,omitempty"`
	Undoable bool          `json:"undoable"`
}

// snapshotFieldsFor returns the task fields an action will change, or nil
// when the action type cannot be compensated from a field snapshot.
func snapshotFieldsFor(a Action) []SnapshotField {
	switch a.Type {
	case ActionUpdateTask:
		var fields []SnapshotField
		if a.Params.Content != nil {
			fields = append(fields, FieldContent)
		}
		if a.Params.Description != nil {
			fields = append(fields, FieldDescription)
		}
		if a.Params.Priority != nil {
			fields = append(fields, FieldPriority)
		}
		if a.Params.DueString != nil {
			fields = append(fields, FieldDue)
		}
		if a.Params.Labels != nil {
			fields = append(fields, FieldLabels)
		}
		return fields
	case ActionCompleteTask, ActionReopenTask:
		// Recurring tasks advance their due date on completion; capture it
		// alongside the flag so undo can put the schedule back.
		return []SnapshotField{FieldCompleted, FieldDue}
	case ActionMoveTask:
		return []SnapshotField{FieldProject, FieldSection}
	case ActionAddLabel, ActionRemoveLabel:
		return []SnapshotField{FieldLabels}
	}
	return nil
}

// SnapshotForAction captures from the current remote task exactly the
// fields the action is about to change.
func SnapshotForAction(a Action, current Task) *TaskSnapshot {
	fields := snapshotFieldsFor(a)
	if fields == nil {
		return nil
	}
	snap := &TaskSnapshot{TaskID: current.ID, Fields: fields}
	for _, f := range fields {
		switch f {
		case FieldContent:
			snap.Content = current.Content
		case FieldDescription:
			snap.Description = current.Description
		case FieldPriority:
			snap.Priority = current.Priority
		case FieldDue:
			snap.Due = current.Due
		case FieldLabels:
			snap.Labels = append([]string(nil), current.Labels...)
		case FieldProject:
			snap.ProjectID = current.ProjectID
		case FieldSection:
			snap.SectionID = current.SectionID
		case FieldCompleted:
			snap.Completed = current.Completed
		}
	}
	return snap
}

// Undoable reports whether a committed action of this type can be reversed,
// given the snapshot and remote result that were recorded for it. Deletes
// are not undoable: the remote service cannot recreate an entity under its
// old id, so a recreation would break every reference to it.
func Undoable(a Action, before *TaskSnapshot, result *RemoteResult) bool {
	if !UndoableInPrinciple(a) {
		return false
	}
	switch a.Type {
	case ActionUpdateTask, ActionCompleteTask, ActionReopenTask,
		ActionMoveTask, ActionAddLabel, ActionRemoveLabel:
		return before != nil
	case ActionCreateTask, ActionCreateProject, ActionCreateSection,
		ActionCreateLabel, ActionAddComment:
		return result != nil && result.CreatedID != ""
	}
	return false
}

// UndoableInPrinciple reports whether the action's type can be compensated
// at all. Preview answers with this alone; a committed outcome is judged by
// Undoable once the snapshot and remote result it needs actually exist.
func UndoableInPrinciple(a Action) bool {
	switch a.Type {
	case ActionUpdateTask, ActionCompleteTask, ActionReopenTask,
		ActionMoveTask, ActionAddLabel, ActionRemoveLabel,
		ActionCreateTask, ActionCreateProject, ActionCreateSection,
		ActionCreateLabel, ActionAddComment:
		return true
	}
	return false
}
