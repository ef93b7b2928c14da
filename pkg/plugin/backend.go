package plugin

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/architect/pkg/domain"
	domainPlugin "github.com/felixgeelhaar/architect/pkg/domain/plugin"
)

// BackendAdapter makes a loaded plugin usable wherever the execution engine
// expects a domain.TaskBackend. The RPC boundary cannot carry a context, so
// cancellation only takes effect between calls.
type BackendAdapter struct {
	impl       domainPlugin.Backend
	renderOpts domain.RenderOptions
}

var _ domain.TaskBackend = (*BackendAdapter)(nil)

func NewBackendAdapter(impl domainPlugin.Backend) *BackendAdapter {
	return &BackendAdapter{
		impl:       impl,
		renderOpts: domain.DefaultRenderOptions(),
	}
}

func (a *BackendAdapter) FetchState(ctx context.Context) (*domain.WorldState, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.FetchError{Err: err}
	}

	result, err := a.impl.FetchState()
	if err != nil {
		return nil, &domain.FetchError{Err: err}
	}
	return domain.NewWorldState(result.Tasks, result.Projects, result.Sections, a.renderOpts), nil
}

func (a *BackendAdapter) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.RemoteError{Kind: domain.RemoteTransport, Op: "get task", Err: err}
	}

	task, err := a.impl.GetTask(id)
	if err != nil {
		return nil, wrapRemote("get task", err)
	}
	if task == nil {
		return nil, &domain.RemoteError{
			Kind: domain.RemoteNotFound,
			Op:   "get task",
			Err:  &domain.StaleTargetError{TargetID: id},
		}
	}
	return task, nil
}

func (a *BackendAdapter) Apply(ctx context.Context, action domain.Action) (*domain.RemoteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.RemoteError{Kind: domain.RemoteTransport, Op: string(action.Type), Err: err}
	}

	result, err := a.impl.Apply(action)
	if err != nil {
		return nil, wrapRemote(string(action.Type), err)
	}
	return result, nil
}

// wrapRemote classifies plugin errors. Errors cross net/rpc flattened to
// strings, so classification falls back to well-known markers the mock and
// real plugins emit.
func wrapRemote(op string, err error) error {
	kind := domain.RemoteTransport
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		kind = domain.RemoteNotFound
	case strings.Contains(msg, "rate limited"):
		kind = domain.RemoteRateLimited
	}
	return &domain.RemoteError{Kind: kind, Op: op, Err: err}
}
