package wiring

import (
	"fmt"

	"github.com/felixgeelhaar/architect/pkg/application"
	"github.com/felixgeelhaar/architect/pkg/domain"
	domainai "github.com/felixgeelhaar/architect/pkg/domain/ai"
)

// AppServices exposes the application layer services wired together with a
// workspace and a task backend.
type AppServices struct {
	Workspace  *Workspace
	Backend    domain.TaskBackend
	Translator *application.TranslatorService
	Execution  *application.ExecutionService
	OutcomeLog *application.OutcomeLog
	Undo       *application.UndoService
	Review     *application.ReviewService
	Audit      *application.AuditService
	Usage      *application.UsageService
	Provider   domainai.Provider

	cleanup func()
}

// BuildAppServices constructs the full service graph for a workspace root.
func BuildAppServices(root string) (*AppServices, error) {
	workspace := NewWorkspace(root)

	provider, err := LoadAIProvider(root)
	if err != nil {
		return nil, fmt.Errorf("load AI provider: %w", err)
	}

	backend, cleanup, err := LoadBackend(root)
	if err != nil {
		return nil, fmt.Errorf("load task backend: %w", err)
	}

	execSvc := application.NewExecutionService(backend, workspace.Audit)
	outcomeLog := application.NewOutcomeLog()

	return &AppServices{
		Workspace:  workspace,
		Backend:    backend,
		Translator: application.NewTranslatorService(provider, workspace.Audit, workspace.Usage),
		Execution:  execSvc,
		OutcomeLog: outcomeLog,
		Undo:       application.NewUndoService(execSvc, outcomeLog, workspace.Audit),
		Review:     application.NewReviewService(workspace.Repo, workspace.Audit),
		Audit:      workspace.Audit,
		Usage:      workspace.Usage,
		Provider:   provider,
		cleanup:    cleanup,
	}, nil
}

// Close releases backend resources (plugin subprocesses).
func (s *AppServices) Close() {
	if s.cleanup != nil {
		s.cleanup()
	}
}
