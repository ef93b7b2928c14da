// Package contract provides contract test assertions for architect task
// backend plugins.
package contract

import (
	"fmt"

	"github.com/felixgeelhaar/architect/pkg/domain"
	domainPlugin "github.com/felixgeelhaar/architect/pkg/domain/plugin"
)

// Result captures the outcome of a single contract assertion.
type Result struct {
	Name    string
	Passed  bool
	Message string
}

// AssertInitSuccess verifies that Init succeeds with valid config.
func AssertInitSuccess(backend domainPlugin.Backend) Result {
	err := backend.Init(map[string]string{"workspace": "test"})
	if err != nil {
		return Result{Name: "InitSuccess", Passed: false, Message: fmt.Sprintf("Init failed: %v", err)}
	}
	return Result{Name: "InitSuccess", Passed: true, Message: "Init succeeded"}
}

// AssertInitWithBadConfig verifies that Init returns an error for bad config.
func AssertInitWithBadConfig(backend domainPlugin.Backend) Result {
	err := backend.Init(map[string]string{"fail": "true"})
	if err == nil {
		return Result{Name: "InitWithBadConfig", Passed: false, Message: "expected Init to fail with fail=true config"}
	}
	return Result{Name: "InitWithBadConfig", Passed: true, Message: fmt.Sprintf("Init correctly failed: %v", err)}
}

// AssertFetchState verifies FetchState returns a non-nil result.
func AssertFetchState(backend domainPlugin.Backend) Result {
	result, err := backend.FetchState()
	if err != nil {
		return Result{Name: "FetchState", Passed: false, Message: fmt.Sprintf("FetchState failed: %v", err)}
	}
	if result == nil {
		return Result{Name: "FetchState", Passed: false, Message: "FetchState returned nil result"}
	}
	return Result{Name: "FetchState", Passed: true, Message: fmt.Sprintf("FetchState returned %d tasks, %d projects", len(result.Tasks), len(result.Projects))}
}

// AssertGetMissingTask verifies that a task id the backend has never seen
// comes back as absent (nil task, nil error), not as a transport error.
func AssertGetMissingTask(backend domainPlugin.Backend) Result {
	task, err := backend.GetTask("contract-no-such-task")
	if err != nil {
		return Result{Name: "GetMissingTask", Passed: false, Message: fmt.Sprintf("GetTask errored instead of signalling absence: %v", err)}
	}
	if task != nil {
		return Result{Name: "GetMissingTask", Passed: false, Message: "GetTask returned a task for an unknown id"}
	}
	return Result{Name: "GetMissingTask", Passed: true, Message: "missing task correctly reported absent"}
}

// AssertCreateAndGet verifies a created task is subsequently readable and
// that creation returns the new id.
func AssertCreateAndGet(backend domainPlugin.Backend) Result {
	content := "contract test task"
	result, err := backend.Apply(domain.Action{
		Type:   domain.ActionCreateTask,
		Params: domain.ActionParams{Content: &content},
	})
	if err != nil {
		return Result{Name: "CreateAndGet", Passed: false, Message: fmt.Sprintf("create failed: %v", err)}
	}
	if result == nil || result.CreatedID == "" {
		return Result{Name: "CreateAndGet", Passed: false, Message: "create returned no created id"}
	}

	task, err := backend.GetTask(result.CreatedID)
	if err != nil {
		return Result{Name: "CreateAndGet", Passed: false, Message: fmt.Sprintf("read-back failed: %v", err)}
	}
	if task == nil || task.Content != content {
		return Result{Name: "CreateAndGet", Passed: false, Message: "read-back did not return the created task"}
	}
	return Result{Name: "CreateAndGet", Passed: true, Message: fmt.Sprintf("created and read back task %s", result.CreatedID)}
}

// AssertApplyUnknownTarget verifies mutations against unknown ids error
// rather than silently succeeding.
func AssertApplyUnknownTarget(backend domainPlugin.Backend) Result {
	_, err := backend.Apply(domain.Action{
		Type:     domain.ActionCompleteTask,
		TargetID: "contract-no-such-task",
	})
	if err == nil {
		return Result{Name: "ApplyUnknownTarget", Passed: false, Message: "expected Apply on unknown id to fail"}
	}
	return Result{Name: "ApplyUnknownTarget", Passed: true, Message: fmt.Sprintf("Apply correctly failed: %v", err)}
}
