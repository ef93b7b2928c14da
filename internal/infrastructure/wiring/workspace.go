package wiring

import (
	"github.com/felixgeelhaar/architect/pkg/application"
	"github.com/felixgeelhaar/architect/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Repo  *storage.FilesystemRepository
	Audit *application.AuditService
	Usage *application.UsageService
}

func NewWorkspace(root string) *Workspace {
	repo := storage.NewFilesystemRepository(root)

	return &Workspace{
		Repo:  repo,
		Audit: application.NewAuditService(repo),
		Usage: application.NewUsageService(repo),
	}
}
