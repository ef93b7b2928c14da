package application

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/architect/pkg/domain"
)

// OutcomeLog is the in-memory stack of committed batches. It lives for the
// process lifetime only; undo across restarts is out of scope because the
// snapshots it would need describe a remote state that has since moved on.
type OutcomeLog struct {
	mu      sync.Mutex
	batches [][]domain.ActionOutcome
}

func NewOutcomeLog() *OutcomeLog {
	return &OutcomeLog{}
}

// Push records a committed batch. Batches with no successful outcome are not
// recorded; there is nothing in them to undo.
func (l *OutcomeLog) Push(outcomes []domain.ActionOutcome) {
	any := false
	for _, o := range outcomes {
		if o.Success && o.Status == domain.StatusApplied {
			any = true
			break
		}
	}
	if !any {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches = append(l.batches, outcomes)
}

// Pop removes and returns the most recent batch.
func (l *OutcomeLog) Pop() ([]domain.ActionOutcome, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.batches) == 0 {
		return nil, false
	}
	last := l.batches[len(l.batches)-1]
	l.batches = l.batches[:len(l.batches)-1]
	return last, true
}

// Peek returns the most recent batch without removing it.
func (l *OutcomeLog) Peek() ([]domain.ActionOutcome, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.batches) == 0 {
		return nil, false
	}
	return l.batches[len(l.batches)-1], true
}

// Depth returns how many batches are available to undo.
func (l *OutcomeLog) Depth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.batches)
}

// UndoService reverses committed batches by deriving compensating actions
// from beforeSnapshots and routing them through the execution engine. Undo
// therefore gets the same staleness checks and per-action accounting as any
// other commit.
type UndoService struct {
	exec  *ExecutionService
	log   *OutcomeLog
	audit domain.AuditLogger
}

func NewUndoService(exec *ExecutionService, log *OutcomeLog, audit domain.AuditLogger) *UndoService {
	return &UndoService{exec: exec, log: log, audit: audit}
}

// Record stores a committed batch for later undo.
func (s *UndoService) Record(outcomes []domain.ActionOutcome) {
	s.log.Push(outcomes)
}

// UndoResult reports what an undo pass did: the outcomes of the compensating
// commit plus the original outcomes that could not be compensated.
type UndoResult struct {
	Outcomes []domain.ActionOutcome `json:"outcomes"`
	Skipped  []domain.ActionOutcome `json:"skipped,omitempty"`
}

// UndoLast pops the most recent batch and reverses its successful outcomes
// in reverse commit order. Non-undoable outcomes are reported as skipped,
// never silently dropped. Returns nil when there is nothing to undo.
func (s *UndoService) UndoLast(ctx context.Context) (*UndoResult, error) {
	batch, ok := s.log.Pop()
	if !ok {
		return nil, nil
	}

	var compensating []domain.Action
	var skipped []domain.ActionOutcome
	for i := len(batch) - 1; i >= 0; i-- {
		o := batch[i]
		if !o.Success || o.Status != domain.StatusApplied {
			continue
		}
		actions, ok := CompensatingActions(o)
		if !ok {
			skip := o
			skip.Status = domain.StatusSkipped
			skip.Reason = domain.ReasonNotUndoable
			skipped = append(skipped, skip)
			continue
		}
		compensating = append(compensating, actions...)
	}

	result := &UndoResult{Skipped: skipped}
	if len(compensating) > 0 {
		outcomes, err := s.exec.Commit(ctx, compensating)
		if err != nil {
			// The batch is already popped; put it back so the caller can
			// retry once the in-flight commit finishes.
			s.log.Push(batch)
			return nil, err
		}
		result.Outcomes = outcomes
	}

	_ = s.audit.Log(domain.AuditUndo, domain.ActorHuman, map[string]interface{}{
		"compensated": len(compensating),
		"skipped":     len(skipped),
	})

	return result, nil
}

// CompensatingActions derives the inverse of one applied outcome from its
// snapshot and remote result. Most outcomes invert to a single action;
// completing a recurring task inverts to two (reopen, then put the advanced
// schedule back).
func CompensatingActions(o domain.ActionOutcome) ([]domain.Action, bool) {
	if !o.Undoable {
		return nil, false
	}

	a := o.Action
	before := o.Before

	one := func(action domain.Action) ([]domain.Action, bool) {
		return []domain.Action{action}, true
	}

	switch a.Type {
	case domain.ActionCreateTask:
		return one(domain.Action{Type: domain.ActionDeleteTask, TargetID: o.Result.CreatedID})
	case domain.ActionCreateProject:
		return one(domain.Action{Type: domain.ActionDeleteProject, TargetID: o.Result.CreatedID})
	case domain.ActionCreateSection:
		return one(domain.Action{Type: domain.ActionDeleteSection, TargetID: o.Result.CreatedID})
	case domain.ActionCreateLabel:
		return one(domain.Action{Type: domain.ActionDeleteLabel, TargetID: o.Result.CreatedID})
	case domain.ActionAddComment:
		return one(domain.Action{Type: domain.ActionDeleteComment, TargetID: o.Result.CreatedID})

	case domain.ActionCompleteTask:
		actions := []domain.Action{{Type: domain.ActionReopenTask, TargetID: before.TaskID}}
		if before.Due != nil && before.Due.Recurring {
			// Completion advanced the recurrence; reopen alone leaves the
			// schedule on the next occurrence.
			due := dueString(before.Due)
			actions = append(actions, domain.Action{
				Type:     domain.ActionUpdateTask,
				TargetID: before.TaskID,
				Params:   domain.ActionParams{DueString: &due},
			})
		}
		return actions, true
	case domain.ActionReopenTask:
		return one(domain.Action{Type: domain.ActionCompleteTask, TargetID: before.TaskID})

	case domain.ActionMoveTask:
		params := domain.ActionParams{ProjectID: before.ProjectID, SectionID: before.SectionID}
		if params.ProjectID == "" && params.SectionID == "" {
			return nil, false
		}
		return one(domain.Action{Type: domain.ActionMoveTask, TargetID: before.TaskID, Params: params})

	case domain.ActionAddLabel, domain.ActionRemoveLabel:
		// Restore the exact prior label set rather than inverting the single
		// edit, in case the remote service normalized anything.
		labels := before.Labels
		if labels == nil {
			labels = []string{}
		}
		return one(domain.Action{
			Type:     domain.ActionUpdateTask,
			TargetID: before.TaskID,
			Params:   domain.ActionParams{Labels: labels},
		})

	case domain.ActionUpdateTask:
		params := domain.ActionParams{}
		touched := false
		if before.Captured(domain.FieldContent) {
			content := before.Content
			params.Content = &content
			touched = true
		}
		if before.Captured(domain.FieldDescription) {
			desc := before.Description
			params.Description = &desc
			touched = true
		}
		if before.Captured(domain.FieldPriority) {
			prio := before.Priority
			params.Priority = &prio
			touched = true
		}
		if before.Captured(domain.FieldDue) {
			due := dueString(before.Due)
			params.DueString = &due
			touched = true
		}
		if before.Captured(domain.FieldLabels) {
			labels := before.Labels
			if labels == nil {
				labels = []string{}
			}
			params.Labels = labels
			touched = true
		}
		if !touched {
			return nil, false
		}
		return one(domain.Action{Type: domain.ActionUpdateTask, TargetID: before.TaskID, Params: params})
	}

	return nil, false
}

// dueString renders a snapshot due value back into the remote service's
// natural-language due field. The string form wins when present because it
// carries recurrence rules a bare date cannot. "no date" clears the deadline.
func dueString(due *domain.Due) string {
	if due == nil {
		return "no date"
	}
	if due.String != "" {
		return due.String
	}
	if due.Date != "" {
		return due.Date
	}
	return "no date"
}
