package domain

// WorkspaceRepository handles the persistence of workspace-level artifacts
// in the .architect/ directory: the audit event chain and usage accounting.
// Review-session persistence lives in the review package's Repository so the
// domain root stays import-free of its subpackages.
type WorkspaceRepository interface {
	Initialize() error
	IsInitialized() bool

	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)
	UpdateUsage(stats UsageStats) error
	LoadUsage() (*UsageStats, error)
}
