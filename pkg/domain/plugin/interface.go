package plugin

import (
	"net/rpc"

	"github.com/felixgeelhaar/architect/pkg/domain"
	"github.com/hashicorp/go-plugin"
)

// Backend is the interface task-service plugins must implement. It mirrors
// domain.TaskBackend minus the context, since calls cross a process
// boundary over net/rpc.
type Backend interface {
	// Init ensures the plugin can connect (auth check)
	Init(config map[string]string) error

	// FetchState reads the full remote state.
	FetchState() (*StateResult, error)

	// GetTask reads the current remote value of one task. A nil task with
	// nil error means the task does not exist.
	GetTask(id string) (*domain.Task, error)

	// Apply issues a single mutation.
	Apply(action domain.Action) (*domain.RemoteResult, error)
}

// StateResult carries raw fetched entities across the RPC boundary; the
// host assembles the immutable WorldState snapshot itself.
type StateResult struct {
	Tasks    []domain.Task
	Projects []domain.Project
	Sections []domain.Section
}

// BackendPlugin is the implementation of plugin.Plugin so we can serve/consume this.
type BackendPlugin struct {
	Impl Backend
}

func (p *BackendPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &BackendRPCServer{Impl: p.Impl}, nil
}

func (p *BackendPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &BackendRPCClient{Client: c}, nil
}

// RPC argument wrappers

type GetTaskArgs struct {
	ID string
}

type ApplyArgs struct {
	Action domain.Action
}

type GetTaskReply struct {
	Task  *domain.Task
	Found bool
}

type BackendRPCClient struct{ Client *rpc.Client }

func (g *BackendRPCClient) Init(config map[string]string) error {
	var resp interface{}
	return g.Client.Call("Plugin.Init", config, &resp)
}

func (g *BackendRPCClient) FetchState() (*StateResult, error) {
	var resp StateResult
	err := g.Client.Call("Plugin.FetchState", struct{}{}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *BackendRPCClient) GetTask(id string) (*domain.Task, error) {
	var resp GetTaskReply
	if err := g.Client.Call("Plugin.GetTask", &GetTaskArgs{ID: id}, &resp); err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, nil
	}
	return resp.Task, nil
}

func (g *BackendRPCClient) Apply(action domain.Action) (*domain.RemoteResult, error) {
	var resp domain.RemoteResult
	if err := g.Client.Call("Plugin.Apply", &ApplyArgs{Action: action}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type BackendRPCServer struct{ Impl Backend }

func (s *BackendRPCServer) Init(config map[string]string, resp *interface{}) error {
	return s.Impl.Init(config)
}

func (s *BackendRPCServer) FetchState(_ struct{}, resp *StateResult) error {
	result, err := s.Impl.FetchState()
	if result != nil {
		*resp = *result
	}
	return err
}

func (s *BackendRPCServer) GetTask(args *GetTaskArgs, resp *GetTaskReply) error {
	task, err := s.Impl.GetTask(args.ID)
	if err != nil {
		return err
	}
	resp.Task = task
	resp.Found = task != nil
	return nil
}

func (s *BackendRPCServer) Apply(args *ApplyArgs, resp *domain.RemoteResult) error {
	result, err := s.Impl.Apply(args.Action)
	if result != nil {
		*resp = *result
	}
	return err
}
