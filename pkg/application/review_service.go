package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/architect/pkg/domain"
	"github.com/felixgeelhaar/architect/pkg/domain/review"
)

// ReviewService drives persisted weekly-review sessions. Every state change
// is written through the repository before the call returns, so a crash
// between steps loses nothing and a restarted process resumes exactly where
// the session document says.
type ReviewService struct {
	repo  review.Repository
	audit domain.AuditLogger

	mu       sync.Mutex
	inFlight map[string]bool // session id -> CompleteStep in progress
}

func NewReviewService(repo review.Repository, audit domain.AuditLogger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		audit:    audit,
		inFlight: make(map[string]bool),
	}
}

// StartSession creates and immediately persists a fresh session positioned
// at the first step.
func (s *ReviewService) StartSession() (*review.Session, error) {
	now := time.Now()
	session := &review.Session{
		ID:          uuid.New().String(),
		Status:      review.StatusInProgress,
		CurrentStep: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.SaveSession(session); err != nil {
		return nil, fmt.Errorf("persist new session: %w", err)
	}

	_ = s.audit.Log(domain.AuditReviewStart, domain.ActorHuman, map[string]interface{}{
		"session": session.ID,
	})

	return session, nil
}

// Resume loads a persisted session by id.
func (s *ReviewService) Resume(id string) (*review.Session, error) {
	return s.repo.LoadSession(id)
}

// ActiveSessions lists ids of sessions that have not been archived.
func (s *ReviewService) ActiveSessions() ([]string, error) {
	return s.repo.ListSessions()
}

// StepView builds the render model for the session's current step. Pure;
// safe to call repeatedly.
func (s *ReviewService) StepView(session *review.Session, world *domain.WorldState, profile *review.Profile) (*review.ViewModel, error) {
	return review.StepViewModel(session, world, profile, time.Now())
}

// CompleteStep validates the input, records the result, advances the
// session by exactly one step, persists, and returns the actions the step
// wants executed. The caller routes those actions through the execution
// engine; nothing here mutates remote state.
func (s *ReviewService) CompleteStep(session *review.Session, input review.StepInput, profile *review.Profile) ([]domain.Action, error) {
	if session.Complete() {
		return nil, domain.ErrSessionComplete
	}

	if err := s.acquireStep(session.ID); err != nil {
		return nil, err
	}
	defer s.releaseStep(session.ID)

	stepID := session.CurrentStepID()
	if err := review.ValidateInput(stepID, input); err != nil {
		return nil, err
	}

	// The statekit machine is rebuilt at the persisted position; the session
	// document stays the single source of truth.
	machine, err := review.NewSessionStateMachine(review.StateForIndex(session.CurrentStep), session.ID)
	if err != nil {
		return nil, err
	}
	if err := machine.Advance(); err != nil {
		return nil, err
	}

	// Advance a copy; the caller's session must stay at the current step
	// when persistence fails, so a retry validates against the right step.
	updated := *session
	updated.StepResults = append(append([]review.StepResult(nil), session.StepResults...), review.StepResult{
		StepID:      stepID,
		CompletedAt: time.Now(),
		Input:       input,
	})
	if skipped := session.PlanDraft.SkippedAreas; skipped != nil {
		clone := make(map[string]string, len(skipped))
		for area, reason := range skipped {
			clone[area] = reason
		}
		updated.PlanDraft.SkippedAreas = clone
	}
	review.ApplyInputToDraft(&updated.PlanDraft, stepID, input)
	updated.CurrentStep++
	updated.UpdatedAt = time.Now()
	if machine.Terminal() {
		updated.Status = review.StatusCompleted
	}

	if err := s.repo.SaveSession(&updated); err != nil {
		return nil, fmt.Errorf("persist session after step %s: %w", stepID, err)
	}
	*session = updated

	if session.Status == review.StatusCompleted {
		if err := s.repo.ArchiveSession(session.ID); err != nil {
			return nil, fmt.Errorf("archive completed session: %w", err)
		}
	}

	_ = s.audit.Log(domain.AuditReviewStep, domain.ActorHuman, map[string]interface{}{
		"session": session.ID,
		"step":    stepID,
	})

	return review.ActionsForStep(stepID, input, profile), nil
}

// Abandon marks a session abandoned and archives it. The document is kept.
func (s *ReviewService) Abandon(session *review.Session) error {
	if session.Status != review.StatusInProgress {
		return fmt.Errorf("session %s is not in progress", session.ID)
	}

	session.Status = review.StatusAbandoned
	session.UpdatedAt = time.Now()
	if err := s.repo.SaveSession(session); err != nil {
		return fmt.Errorf("persist abandoned session: %w", err)
	}
	if err := s.repo.ArchiveSession(session.ID); err != nil {
		return fmt.Errorf("archive abandoned session: %w", err)
	}

	_ = s.audit.Log(domain.AuditReviewAbandon, domain.ActorHuman, map[string]interface{}{
		"session": session.ID,
	})

	return nil
}

func (s *ReviewService) acquireStep(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return domain.ErrStepInFlight
	}
	s.inFlight[id] = true
	return nil
}

func (s *ReviewService) releaseStep(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}
