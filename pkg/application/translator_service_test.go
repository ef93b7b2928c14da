package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/architect/pkg/domain"
	"github.com/felixgeelhaar/architect/pkg/domain/ai"
)

// scriptedProvider returns canned responses in order.
type scriptedProvider struct {
	responses []string
	calls     int
	err       error
}

func (p *scriptedProvider) ID() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.calls >= len(p.responses) {
		return nil, errors.New("no more scripted responses")
	}
	text := p.responses[p.calls]
	p.calls++
	return &ai.CompletionResponse{
		Text:  text,
		Model: "scripted-1",
		Usage: ai.TokenUsage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

func translatorWorld() *domain.WorldState {
	return domain.NewWorldState(
		[]domain.Task{{ID: "1", Content: "alpha", ProjectID: "p1"}},
		[]domain.Project{{ID: "p1", Name: "Work"}},
		nil,
		domain.DefaultRenderOptions(),
	)
}

func newTranslator(provider ai.Provider) *TranslatorService {
	return NewTranslatorService(provider, &recordingAudit{}, nil)
}

func TestTranslateValidProposal(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"thought": "Complete the finished task.", "actions": [{"type": "complete_task", "id": "1"}]}`,
	}}
	svc := newTranslator(provider)

	analysis, err := svc.Translate(context.Background(), translatorWorld(), "mark alpha done")
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Thought != "Complete the finished task." {
		t.Errorf("thought = %q", analysis.Thought)
	}
	if len(analysis.Actions) != 1 || analysis.Actions[0].Type != domain.ActionCompleteTask {
		t.Errorf("actions = %+v", analysis.Actions)
	}
	if len(analysis.Rejected) != 0 {
		t.Errorf("rejected = %+v, want none", analysis.Rejected)
	}
}

func TestTranslateStripsMarkdownFences(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"Here is my plan:\n```json\n{\"thought\": \"ok\", \"actions\": []}\n```\nLet me know!",
	}}
	svc := newTranslator(provider)

	analysis, err := svc.Translate(context.Background(), translatorWorld(), "advice please")
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Thought != "ok" {
		t.Errorf("thought = %q", analysis.Thought)
	}
}

func TestTranslateRetriesOnceOnMalformedOutput(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"I think you should relax this week.", // no JSON at all
		`{"thought": "second try", "actions": []}`,
	}}
	svc := newTranslator(provider)

	analysis, err := svc.Translate(context.Background(), translatorWorld(), "plan my week")
	if err != nil {
		t.Fatal(err)
	}
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2", provider.calls)
	}
	if analysis.Thought != "second try" {
		t.Errorf("thought = %q", analysis.Thought)
	}
}

func TestTranslateFailsAfterSecondMalformedOutput(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"not json",
		`{"actions": []}`, // missing required thought
	}}
	svc := newTranslator(provider)

	_, err := svc.Translate(context.Background(), translatorWorld(), "plan my week")
	var perr *domain.ProposalError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProposalError", err)
	}
	if perr.Raw == "" {
		t.Error("ProposalError should carry the raw model output")
	}
}

func TestTranslateRejectsActionsAgainstSnapshot(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"thought": "mixed bag", "actions": [
			{"type": "complete_task", "id": "1"},
			{"type": "complete_task", "id": "999"},
			{"type": "create_task", "params": {"content": "new", "project_id": "p-ghost"}},
			{"type": "explode_task", "id": "1"}
		]}`,
	}}
	svc := newTranslator(provider)

	analysis, err := svc.Translate(context.Background(), translatorWorld(), "do things")
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.Actions) != 1 {
		t.Fatalf("actions = %+v, want only the valid one", analysis.Actions)
	}
	if len(analysis.Rejected) != 3 {
		t.Fatalf("rejected = %d, want 3", len(analysis.Rejected))
	}
	for _, r := range analysis.Rejected {
		if r.Reason == "" {
			t.Errorf("rejected action %+v has no reason", r.Action)
		}
	}
}

func TestTranslateProviderFailure(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("upstream down")}
	svc := newTranslator(provider)

	_, err := svc.Translate(context.Background(), translatorWorld(), "anything")
	if err == nil {
		t.Fatal("expected an error when the provider fails")
	}
}
