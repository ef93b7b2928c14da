package domain

import "fmt"

// ActionType discriminates the tagged Action variant. The set matches what
// the remote task service can actually do; the translator rejects anything
// outside it before the engine ever sees it.
type ActionType string

const (
	ActionCreateTask    ActionType = "create_task"
	ActionUpdateTask    ActionType = "update_task"
	ActionCompleteTask  ActionType = "complete_task"
	ActionReopenTask    ActionType = "reopen_task"
	ActionMoveTask      ActionType = "move_task"
	ActionDeleteTask    ActionType = "delete_task"
	ActionAddLabel      ActionType = "add_label"
	ActionRemoveLabel   ActionType = "remove_label"
	ActionAddComment    ActionType = "add_comment"
	ActionDeleteComment ActionType = "delete_comment"
	ActionCreateProject ActionType = "create_project"
	ActionDeleteProject ActionType = "delete_project"
	ActionCreateSection ActionType = "create_section"
	ActionDeleteSection ActionType = "delete_section"
	ActionCreateLabel   ActionType = "create_label"
	ActionDeleteLabel   ActionType = "delete_label"
)

// KnownActionTypes lists every type the engine accepts, in a stable order.
var KnownActionTypes = []ActionType{
	ActionCreateTask, ActionUpdateTask, ActionCompleteTask, ActionReopenTask,
	ActionMoveTask, ActionDeleteTask, ActionAddLabel, ActionRemoveLabel,
	ActionAddComment, ActionDeleteComment, ActionCreateProject,
	ActionDeleteProject, ActionCreateSection, ActionDeleteSection,
	ActionCreateLabel, ActionDeleteLabel,
}

// ActionParams carries the mutation-specific payload. Pointer fields on
// update-style actions distinguish "set to zero value" from "leave alone";
// everything the action does not mention stays untouched remotely.
type ActionParams struct {
	Content     *string  `json:"content,omitempty"`
	Description *string  `json:"description,omitempty"`
	Priority    *int     `json:"priority,omitempty"`
	DueString   *string  `json:"due_string,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Name        string   `json:"name,omitempty"`       // create/delete project, section, label
	Label       string   `json:"label,omitempty"`      // add_label / remove_label
	ProjectID   string   `json:"project_id,omitempty"` // create destination or move target
	SectionID   string   `json:"section_id,omitempty"`
}

// Action is a typed, self-contained description of one proposed mutation.
// It is created by the translator or a review step, consumed exactly once
// by the execution engine, and never mutated after creation.
type Action struct {
	Type     ActionType   `json:"type"`
	TargetID string       `json:"id,omitempty"`
	Params   ActionParams `json:"params"`
}

// TargetsTask reports whether the action mutates an existing task, i.e.
// whether the engine must snapshot remote state before committing it.
func (a Action) TargetsTask() bool {
	switch a.Type {
	case ActionUpdateTask, ActionCompleteTask, ActionReopenTask,
		ActionMoveTask, ActionDeleteTask, ActionAddLabel, ActionRemoveLabel:
		return true
	}
	return false
}

// ConcurrencyKey identifies the remote entity the action touches. Actions
// with distinct keys may execute concurrently; actions sharing a key must
// stay sequential.
func (a Action) ConcurrencyKey() string {
	if a.TargetID != "" {
		return "task:" + a.TargetID
	}
	// Creations have no target id yet; serialize them among themselves per
	// destination so ordering within one project stays deterministic.
	return "new:" + a.Params.ProjectID
}

// Validate checks structural rules only; id existence against a snapshot is
// the translator's job, and remote existence is checked again at commit.
func (a Action) Validate() error {
	known := false
	for _, t := range KnownActionTypes {
		if a.Type == t {
			known = true
			break
		}
	}
	if !known {
		return &ValidationError{Action: a, Reason: fmt.Sprintf("unknown action type %q", a.Type)}
	}

	fail := func(format string, args ...interface{}) error {
		return &ValidationError{Action: a, Reason: fmt.Sprintf(format, args...)}
	}

	if a.Params.Priority != nil && (*a.Params.Priority < 1 || *a.Params.Priority > 4) {
		return fail("priority must be between 1 and 4, got %d", *a.Params.Priority)
	}

	switch a.Type {
	case ActionCreateTask:
		if a.Params.Content == nil || *a.Params.Content == "" {
			return fail("create_task requires content")
		}
	case ActionUpdateTask:
		if a.TargetID == "" {
			return fail("update_task requires a task id")
		}
		if a.Params.Content == nil && a.Params.Description == nil &&
			a.Params.Priority == nil && a.Params.DueString == nil && a.Params.Labels == nil {
			return fail("update_task changes nothing")
		}
	case ActionCompleteTask, ActionReopenTask, ActionDeleteTask:
		if a.TargetID == "" {
			return fail("%s requires a task id", a.Type)
		}
	case ActionMoveTask:
		if a.TargetID == "" {
			return fail("move_task requires a task id")
		}
		if a.Params.ProjectID == "" && a.Params.SectionID == "" {
			return fail("move_task requires a destination project or section")
		}
	case ActionAddLabel, ActionRemoveLabel:
		if a.TargetID == "" || a.Params.Label == "" {
			return fail("%s requires a task id and a label", a.Type)
		}
	case ActionAddComment:
		if a.TargetID == "" {
			return fail("add_comment requires a task id")
		}
		if a.Params.Content == nil || *a.Params.Content == "" {
			return fail("add_comment requires content")
		}
	case ActionDeleteComment:
		if a.TargetID == "" {
			return fail("delete_comment requires a comment id")
		}
	case ActionCreateProject, ActionCreateLabel:
		if a.Params.Name == "" {
			return fail("%s requires a name", a.Type)
		}
	case ActionCreateSection:
		if a.Params.Name == "" || a.Params.ProjectID == "" {
			return fail("create_section requires a name and a project id")
		}
	case ActionDeleteProject, ActionDeleteSection, ActionDeleteLabel:
		if a.TargetID == "" {
			return fail("%s requires an id", a.Type)
		}
	}
	return nil
}

// Describe renders a one-line human summary used by preview listings.
func (a Action) Describe() string {
	switch a.Type {
	case ActionCreateTask:
		return fmt.Sprintf("create task %q", deref(a.Params.Content))
	case ActionUpdateTask:
		return fmt.Sprintf("update task %s", a.TargetID)
	case ActionCompleteTask:
		return fmt.Sprintf("complete task %s", a.TargetID)
	case ActionReopenTask:
		return fmt.Sprintf("reopen task %s", a.TargetID)
	case ActionMoveTask:
		dest := a.Params.ProjectID
		if dest == "" {
			dest = "section " + a.Params.SectionID
		}
		return fmt.Sprintf("move task %s to %s", a.TargetID, dest)
	case ActionDeleteTask:
		return fmt.Sprintf("delete task %s", a.TargetID)
	case ActionAddLabel:
		return fmt.Sprintf("add label %q to task %s", a.Params.Label, a.TargetID)
	case ActionRemoveLabel:
		return fmt.Sprintf("remove label %q from task %s", a.Params.Label, a.TargetID)
	case ActionAddComment:
		return fmt.Sprintf("comment on task %s", a.TargetID)
	case ActionDeleteComment:
		return fmt.Sprintf("delete comment %s", a.TargetID)
	case ActionCreateProject:
		return fmt.Sprintf("create project %q", a.Params.Name)
	case ActionDeleteProject:
		return fmt.Sprintf("delete project %s", a.TargetID)
	case ActionCreateSection:
		return fmt.Sprintf("create section %q", a.Params.Name)
	case ActionDeleteSection:
		return fmt.Sprintf("delete section %s", a.TargetID)
	case ActionCreateLabel:
		return fmt.Sprintf("create label %q", a.Params.Name)
	case ActionDeleteLabel:
		return fmt.Sprintf("delete label %s", a.TargetID)
	}
	return string(a.Type)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
