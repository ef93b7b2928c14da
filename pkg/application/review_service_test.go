package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/architect/pkg/domain"
	"github.com/felixgeelhaar/architect/pkg/domain/review"
	"github.com/felixgeelhaar/architect/pkg/storage"
)

func newReviewFixture(t *testing.T) (*storage.FilesystemRepository, *ReviewService) {
	t.Helper()
	repo := storage.NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	return repo, NewReviewService(repo, &recordingAudit{})
}

func stepInputFor(stepID string) review.StepInput {
	switch stepID {
	case review.StepClearInbox:
		return review.StepInput{CapturedCount: 2}
	case review.StepActiveHonesty:
		return review.StepInput{Resolutions: []review.Resolution{
			{TaskID: "1", Decision: review.DecisionComplete},
		}}
	case review.StepCalendarReview:
		return review.StepInput{Notes: "clear calendar"}
	case review.StepPlanNextWeek:
		return review.StepInput{SelectedTaskIDs: []string{"1"}, FocusAreas: []string{"Work"}}
	}
	return review.StepInput{}
}

func TestStartSessionPersistsImmediately(t *testing.T) {
	repo, svc := newReviewFixture(t)

	session, err := svc.StartSession()
	if err != nil {
		t.Fatal(err)
	}
	if session.Status != review.StatusInProgress || session.CurrentStep != 0 {
		t.Errorf("session = %+v", session)
	}

	loaded, err := repo.LoadSession(session.ID)
	if err != nil {
		t.Fatalf("new session not on disk: %v", err)
	}
	if loaded.ID != session.ID {
		t.Errorf("loaded %s, want %s", loaded.ID, session.ID)
	}
}

func TestCompleteStepWalksTheFullSequence(t *testing.T) {
	repo, svc := newReviewFixture(t)
	profile := review.DefaultProfile()

	session, err := svc.StartSession()
	if err != nil {
		t.Fatal(err)
	}

	for i := range review.Steps {
		stepID := session.CurrentStepID()
		actions, err := svc.CompleteStep(session, stepInputFor(stepID), profile)
		if err != nil {
			t.Fatalf("step %d (%s): %v", i, stepID, err)
		}
		if session.CurrentStep != i+1 {
			t.Fatalf("after step %s CurrentStep = %d, want %d", stepID, session.CurrentStep, i+1)
		}

		switch stepID {
		case review.StepActiveHonesty:
			if len(actions) != 1 || actions[0].Type != domain.ActionCompleteTask {
				t.Errorf("honesty actions = %+v", actions)
			}
		case review.StepPlanNextWeek:
			if len(actions) != 1 || actions[0].Type != domain.ActionAddLabel {
				t.Errorf("plan actions = %+v", actions)
			}
		default:
			if len(actions) != 0 {
				t.Errorf("step %s produced %d actions, want 0", stepID, len(actions))
			}
		}
	}

	if !session.Complete() || session.Status != review.StatusCompleted {
		t.Errorf("session = status %s, step %d", session.Status, session.CurrentStep)
	}
	if len(session.StepResults) != len(review.Steps) {
		t.Errorf("got %d step results, want %d", len(session.StepResults), len(review.Steps))
	}

	// Completion archives the document; it no longer lists as active.
	ids, err := repo.ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("active sessions = %v, want none after completion", ids)
	}

	if _, err := svc.CompleteStep(session, review.StepInput{}, profile); !errors.Is(err, domain.ErrSessionComplete) {
		t.Errorf("err = %v, want ErrSessionComplete", err)
	}
}

func TestCompleteStepRejectsInvalidInputWithoutAdvancing(t *testing.T) {
	repo, svc := newReviewFixture(t)

	session, err := svc.StartSession()
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.CompleteStep(session, review.StepInput{CapturedCount: -5}, review.DefaultProfile())
	var stepErr *domain.InvalidStepInputError
	if !errors.As(err, &stepErr) {
		t.Fatalf("err = %v, want *InvalidStepInputError", err)
	}
	if session.CurrentStep != 0 {
		t.Error("failed validation must not advance the session")
	}

	loaded, err := repo.LoadSession(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.CurrentStep != 0 || len(loaded.StepResults) != 0 {
		t.Error("failed validation must not change the persisted document")
	}
}

// failingSessionRepo lets a test break SaveSession while keeping every
// other repository operation real.
type failingSessionRepo struct {
	*storage.FilesystemRepository
	failSave bool
}

func (r *failingSessionRepo) SaveSession(s *review.Session) error {
	if r.failSave {
		return fmt.Errorf("disk full")
	}
	return r.FilesystemRepository.SaveSession(s)
}

func TestCompleteStepLeavesSessionUnchangedWhenSaveFails(t *testing.T) {
	fs := storage.NewFilesystemRepository(t.TempDir())
	if err := fs.Initialize(); err != nil {
		t.Fatal(err)
	}
	repo := &failingSessionRepo{FilesystemRepository: fs}
	svc := NewReviewService(repo, &recordingAudit{})
	profile := review.DefaultProfile()

	session, err := svc.StartSession()
	if err != nil {
		t.Fatal(err)
	}

	repo.failSave = true
	if _, err := svc.CompleteStep(session, stepInputFor(review.StepClearInbox), profile); err == nil {
		t.Fatal("CompleteStep succeeded despite failed persistence")
	}
	if session.CurrentStep != 0 || len(session.StepResults) != 0 {
		t.Errorf("session advanced in memory: step %d, %d results", session.CurrentStep, len(session.StepResults))
	}
	loaded, err := fs.LoadSession(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.CurrentStep != 0 || len(loaded.StepResults) != 0 {
		t.Error("failed save must not change the persisted document")
	}

	// A retry on the same session object completes the same step.
	repo.failSave = false
	if _, err := svc.CompleteStep(session, stepInputFor(review.StepClearInbox), profile); err != nil {
		t.Fatalf("retry after recovered persistence: %v", err)
	}
	if session.CurrentStep != 1 || session.StepResults[0].StepID != review.StepClearInbox {
		t.Errorf("retry landed at step %d with results %+v", session.CurrentStep, session.StepResults)
	}
}

func TestResumeReloadsPersistedProgress(t *testing.T) {
	repo, svc := newReviewFixture(t)
	profile := review.DefaultProfile()

	session, err := svc.StartSession()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteStep(session, stepInputFor(review.StepClearInbox), profile); err != nil {
		t.Fatal(err)
	}

	// A fresh service over the same repository sees the same position.
	svc2 := NewReviewService(repo, &recordingAudit{})
	resumed, err := svc2.Resume(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resumed.CurrentStep != 1 {
		t.Errorf("resumed at step %d, want 1", resumed.CurrentStep)
	}
	if resumed.CurrentStepID() != review.StepActiveHonesty {
		t.Errorf("resumed step id = %q", resumed.CurrentStepID())
	}
}

func TestAbandonArchivesSession(t *testing.T) {
	repo, svc := newReviewFixture(t)

	session, err := svc.StartSession()
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Abandon(session); err != nil {
		t.Fatal(err)
	}
	if session.Status != review.StatusAbandoned {
		t.Errorf("status = %s", session.Status)
	}

	ids, err := repo.ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("active sessions = %v, want none", ids)
	}

	if err := svc.Abandon(session); err == nil {
		t.Error("abandoning twice must fail")
	}
}
