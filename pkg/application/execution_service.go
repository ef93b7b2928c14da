package application

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/architect/pkg/domain"
)

// maxCommitWorkers bounds how many disjoint-target actions run at once.
const maxCommitWorkers = 4

// ExecutionService is the only path through which mutations reach the remote
// service. Preview never touches the network; Commit re-reads every target
// immediately before mutating it so undo snapshots reflect remote reality,
// not the possibly stale local world.
type ExecutionService struct {
	backend domain.TaskBackend
	audit   domain.AuditLogger

	mu       sync.Mutex
	inFlight bool
}

func NewExecutionService(backend domain.TaskBackend, audit domain.AuditLogger) *ExecutionService {
	return &ExecutionService{backend: backend, audit: audit}
}

// Preview simulates a batch against the held snapshot. It performs no remote
// calls and can be repeated or abandoned freely.
func (s *ExecutionService) Preview(actions []domain.Action, world *domain.WorldState) []domain.ActionOutcome {
	outcomes := make([]domain.ActionOutcome, len(actions))
	for i, a := range actions {
		outcomes[i] = previewOne(a, world)
	}
	return outcomes
}

func previewOne(a domain.Action, world *domain.WorldState) domain.ActionOutcome {
	if err := a.Validate(); err != nil {
		return domain.ActionOutcome{
			Action:  a,
			Status:  domain.StatusFailed,
			Reason:  domain.ReasonInvalid,
			Message: err.Error(),
		}
	}

	var before *domain.TaskSnapshot
	if a.TargetsTask() {
		current, ok := world.FindTask(a.TargetID)
		if !ok {
			return domain.ActionOutcome{
				Action:  a,
				Status:  domain.StatusFailed,
				Reason:  domain.ReasonStaleTarget,
				Message: (&domain.StaleTargetError{TargetID: a.TargetID}).Error(),
			}
		}
		before = domain.SnapshotForAction(a, current)
	}

	return domain.ActionOutcome{
		Action:   a,
		Success:  true,
		Status:   domain.StatusSimulated,
		Message:  "Would " + a.Describe(),
		Before:   before,
		Undoable: domain.UndoableInPrinciple(a),
	}
}

// Commit executes a batch against the remote service. One outcome per input
// action, in input order; a failed action never aborts its siblings. At most
// one commit or undo batch runs at a time.
func (s *ExecutionService) Commit(ctx context.Context, actions []domain.Action) ([]domain.ActionOutcome, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	outcomes := make([]domain.ActionOutcome, len(actions))

	// Actions sharing a concurrency key must stay sequential relative to
	// each other; disjoint keys may run in parallel.
	groups := make(map[string][]int)
	var keys []string
	for i, a := range actions {
		key := a.ConcurrencyKey()
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxCommitWorkers)
	for _, key := range keys {
		indices := groups[key]
		g.Go(func() error {
			for _, i := range indices {
				outcomes[i] = s.commitOne(gctx, actions[i])
			}
			return nil
		})
	}
	// Workers never return errors; per-action failures live in the outcomes.
	_ = g.Wait()

	applied, failed := 0, 0
	for _, o := range outcomes {
		if o.Success {
			applied++
		} else {
			failed++
		}
	}
	_ = s.audit.Log(domain.AuditCommit, domain.ActorHuman, map[string]interface{}{
		"actions": len(actions),
		"applied": applied,
		"failed":  failed,
	})

	return outcomes, nil
}

func (s *ExecutionService) commitOne(ctx context.Context, a domain.Action) domain.ActionOutcome {
	if err := a.Validate(); err != nil {
		return domain.ActionOutcome{
			Action:  a,
			Status:  domain.StatusFailed,
			Reason:  domain.ReasonInvalid,
			Message: err.Error(),
		}
	}

	var before *domain.TaskSnapshot
	if a.TargetsTask() {
		current, err := s.backend.GetTask(ctx, a.TargetID)
		if err != nil {
			if domain.IsRemoteNotFound(err) {
				return domain.ActionOutcome{
					Action:  a,
					Status:  domain.StatusFailed,
					Reason:  domain.ReasonStaleTarget,
					Message: (&domain.StaleTargetError{TargetID: a.TargetID}).Error(),
				}
			}
			return remoteFailure(a, err)
		}
		before = domain.SnapshotForAction(a, *current)

		// Idempotent no-ops: re-doing what is already done counts as
		// success but produces nothing to undo.
		if msg, ok := alreadySatisfied(a, current); ok {
			return domain.ActionOutcome{
				Action:  a,
				Success: true,
				Status:  domain.StatusApplied,
				Message: msg,
				Before:  before,
			}
		}
	}

	result, err := s.backend.Apply(ctx, a)
	if err != nil {
		var re *domain.RemoteError
		if errors.As(err, &re) && re.Kind == domain.RemoteNotFound {
			return domain.ActionOutcome{
				Action:  a,
				Status:  domain.StatusFailed,
				Reason:  domain.ReasonStaleTarget,
				Message: (&domain.StaleTargetError{TargetID: a.TargetID}).Error(),
			}
		}
		return remoteFailure(a, err)
	}

	return domain.ActionOutcome{
		Action:   a,
		Success:  true,
		Status:   domain.StatusApplied,
		Message:  a.Describe(),
		Before:   before,
		Result:   result,
		Undoable: domain.Undoable(a, before, result),
	}
}

// alreadySatisfied reports whether the action's desired end state already
// holds remotely, making the mutation a safe no-op.
func alreadySatisfied(a domain.Action, current *domain.Task) (string, bool) {
	switch a.Type {
	case domain.ActionCompleteTask:
		if current.Completed {
			return "task is already completed", true
		}
	case domain.ActionReopenTask:
		if !current.Completed {
			return "task is already open", true
		}
	case domain.ActionAddLabel:
		for _, l := range current.Labels {
			if l == a.Params.Label {
				return "label is already present", true
			}
		}
	case domain.ActionRemoveLabel:
		for _, l := range current.Labels {
			if l == a.Params.Label {
				return "", false
			}
		}
		return "label is already absent", true
	}
	return "", false
}

func remoteFailure(a domain.Action, err error) domain.ActionOutcome {
	reason := domain.ReasonRemote
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Kind == domain.RemoteRateLimited {
		reason = domain.ReasonRateLimited
	}
	return domain.ActionOutcome{
		Action:  a,
		Status:  domain.StatusFailed,
		Reason:  reason,
		Message: err.Error(),
	}
}

func (s *ExecutionService) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return domain.ErrBatchInFlight
	}
	s.inFlight = true
	return nil
}

func (s *ExecutionService) release() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
