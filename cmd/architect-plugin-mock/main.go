package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/felixgeelhaar/architect/pkg/domain"
	domainPlugin "github.com/felixgeelhaar/architect/pkg/domain/plugin"
	infraPlugin "github.com/felixgeelhaar/architect/pkg/plugin"
	goplugin "github.com/hashicorp/go-plugin"
)

// MockBackend is an in-memory task backend used for plugin contract testing
// and local development without a real task service.
type MockBackend struct {
	mu       sync.Mutex
	tasks    map[string]*domain.Task
	projects []domain.Project
	sections []domain.Section
	nextID   int
}

func NewMockBackend() *MockBackend {
	inbox := domain.Project{ID: "mock-inbox", Name: "Inbox", IsInbox: true}
	work := domain.Project{ID: "mock-work", Name: "Work"}
	return &MockBackend{
		tasks: map[string]*domain.Task{
			"mock-1": {ID: "mock-1", Content: "Review pull requests", ProjectID: "mock-work", Priority: 3},
			"mock-2": {ID: "mock-2", Content: "Buy groceries", ProjectID: "mock-inbox", Priority: 1},
		},
		projects: []domain.Project{inbox, work},
		nextID:   3,
	}
}

func (m *MockBackend) Init(config map[string]string) error {
	if config["fail"] == "true" {
		return fmt.Errorf("init refused by config")
	}
	log.Printf("mock backend initialized with %d config keys", len(config))
	return nil
}

func (m *MockBackend) FetchState() (*domainPlugin.StateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &domainPlugin.StateResult{
		Projects: append([]domain.Project(nil), m.projects...),
		Sections: append([]domain.Section(nil), m.sections...),
	}
	for _, t := range m.tasks {
		result.Tasks = append(result.Tasks, *t)
	}
	return result, nil
}

func (m *MockBackend) GetTask(id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (m *MockBackend) Apply(action domain.Action) (*domain.RemoteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if action.Type == domain.ActionCreateTask {
		id := fmt.Sprintf("mock-%d", m.nextID)
		m.nextID++
		t := &domain.Task{ID: id, Priority: 1}
		if action.Params.Content != nil {
			t.Content = *action.Params.Content
		}
		if action.Params.ProjectID != "" {
			t.ProjectID = action.Params.ProjectID
		}
		if action.Params.Priority != nil {
			t.Priority = *action.Params.Priority
		}
		m.tasks[id] = t
		return &domain.RemoteResult{CreatedID: id}, nil
	}

	t, ok := m.tasks[action.TargetID]
	if !ok {
		return nil, fmt.Errorf("task %s not found", action.TargetID)
	}

	switch action.Type {
	case domain.ActionCompleteTask:
		t.Completed = true
	case domain.ActionReopenTask:
		t.Completed = false
	case domain.ActionDeleteTask:
		delete(m.tasks, action.TargetID)
	case domain.ActionUpdateTask:
		if action.Params.Content != nil {
			t.Content = *action.Params.Content
		}
		if action.Params.Description != nil {
			t.Description = *action.Params.Description
		}
		if action.Params.Priority != nil {
			t.Priority = *action.Params.Priority
		}
		if action.Params.DueString != nil {
			if *action.Params.DueString == "no date" {
				t.Due = nil
			} else {
				t.Due = &domain.Due{String: *action.Params.DueString}
			}
		}
		if action.Params.Labels != nil {
			t.Labels = action.Params.Labels
		}
	case domain.ActionMoveTask:
		if action.Params.ProjectID != "" {
			t.ProjectID = action.Params.ProjectID
			t.SectionID = ""
		}
		if action.Params.SectionID != "" {
			t.SectionID = action.Params.SectionID
		}
	case domain.ActionAddLabel:
		for _, l := range t.Labels {
			if l == action.Params.Label {
				return &domain.RemoteResult{}, nil
			}
		}
		t.Labels = append(t.Labels, action.Params.Label)
	case domain.ActionRemoveLabel:
		kept := t.Labels[:0]
		for _, l := range t.Labels {
			if l != action.Params.Label {
				kept = append(kept, l)
			}
		}
		t.Labels = kept
	default:
		return nil, fmt.Errorf("unsupported action type %s", action.Type)
	}

	return &domain.RemoteResult{}, nil
}

func main() {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: infraPlugin.HandshakeConfig,
		Plugins: map[string]goplugin.Plugin{
			"backend": &domainPlugin.BackendPlugin{Impl: NewMockBackend()},
		},
	})
}
