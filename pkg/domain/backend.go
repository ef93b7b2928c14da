package domain

import "context"

// TaskBackend is the remote task-service collaborator. The Todoist client
// implements it natively; alternate services load as plugin binaries. The
// engine holds the only references that mutate remote state.
type TaskBackend interface {
	// FetchState reads the full remote state and builds a fresh snapshot.
	// Fails with *FetchError on transport or auth trouble.
	FetchState(ctx context.Context) (*WorldState, error)

	// GetTask reads the current remote value of one task. Returns a
	// *RemoteError of kind not_found when the task is gone.
	GetTask(ctx context.Context, id string) (*Task, error)

	// Apply issues a single validated mutation. Never called in preview
	// mode. Failures surface as *RemoteError; the engine does not retry.
	Apply(ctx context.Context, action Action) (*RemoteResult, error)
}
