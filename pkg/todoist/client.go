// Package todoist implements the task backend against the Todoist REST v2
// API. It is the default backend; external backends plug in over the plugin
// contract instead.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/felixgeelhaar/architect/pkg/domain"
	"golang.org/x/sync/errgroup"
)

const defaultBaseURL = "https://api.todoist.com/rest/v2"

type Client struct {
	token      string
	baseURL    string       // For testing - if set, used directly; otherwise uses the Todoist REST v2 URL
	httpClient *http.Client // For testing - defaults to http.DefaultClient
	renderOpts domain.RenderOptions
}

// Compile-time check that the client satisfies the backend contract.
var _ domain.TaskBackend = (*Client)(nil)

func NewClient(token string) *Client {
	return &Client{
		token:      token,
		renderOpts: domain.DefaultRenderOptions(),
	}
}

// NewClientWithBase creates a client pointed at a custom base URL (for testing).
func NewClientWithBase(token, baseURL string, httpClient *http.Client) *Client {
	return &Client{
		token:      token,
		baseURL:    baseURL,
		httpClient: httpClient,
		renderOpts: domain.DefaultRenderOptions(),
	}
}

func (c *Client) base() string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return defaultBaseURL
}

func (c *Client) client() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}

// FetchState retrieves tasks, projects and sections in parallel and folds
// them into one immutable snapshot.
func (c *Client) FetchState(ctx context.Context) (*domain.WorldState, error) {
	var (
		tasks    []domain.Task
		projects []domain.Project
		sections []domain.Section
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.getJSON(gctx, "/tasks", &tasks) })
	g.Go(func() error { return c.getJSON(gctx, "/projects", &projects) })
	g.Go(func() error { return c.getJSON(gctx, "/sections", &sections) })
	if err := g.Wait(); err != nil {
		return nil, &domain.FetchError{Err: err}
	}

	return domain.NewWorldState(tasks, projects, sections, c.renderOpts), nil
}

// GetTask fetches one task by id. A missing task surfaces as a not_found
// remote error so callers can distinguish staleness from transport trouble.
func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := c.getJSON(ctx, "/tasks/"+id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Apply issues the remote mutation for a single validated action.
func (c *Client) Apply(ctx context.Context, a domain.Action) (*domain.RemoteResult, error) {
	switch a.Type {
	case domain.ActionCreateTask:
		return c.postCreated(ctx, "/tasks", createTaskBody(a))
	case domain.ActionUpdateTask:
		return nil, c.post(ctx, "/tasks/"+a.TargetID, updateTaskBody(a))
	case domain.ActionCompleteTask:
		return nil, c.post(ctx, "/tasks/"+a.TargetID+"/close", nil)
	case domain.ActionReopenTask:
		return nil, c.post(ctx, "/tasks/"+a.TargetID+"/reopen", nil)
	case domain.ActionMoveTask:
		body := map[string]string{}
		if a.Params.ProjectID != "" {
			body["project_id"] = a.Params.ProjectID
		}
		if a.Params.SectionID != "" {
			body["section_id"] = a.Params.SectionID
		}
		return nil, c.post(ctx, "/tasks/"+a.TargetID, body)
	case domain.ActionDeleteTask:
		return nil, c.delete(ctx, "/tasks/"+a.TargetID)
	case domain.ActionAddLabel:
		return nil, c.editLabels(ctx, a.TargetID, a.Params.Label, true)
	case domain.ActionRemoveLabel:
		return nil, c.editLabels(ctx, a.TargetID, a.Params.Label, false)
	case domain.ActionAddComment:
		return c.postCreated(ctx, "/comments", map[string]string{
			"task_id": a.TargetID,
			"content": contentOf(a),
		})
	case domain.ActionDeleteComment:
		return nil, c.delete(ctx, "/comments/"+a.TargetID)
	case domain.ActionCreateProject:
		return c.postCreated(ctx, "/projects", map[string]string{"name": a.Params.Name})
	case domain.ActionDeleteProject:
		return nil, c.delete(ctx, "/projects/"+a.TargetID)
	case domain.ActionCreateSection:
		return c.postCreated(ctx, "/sections", map[string]string{
			"name":       a.Params.Name,
			"project_id": a.Params.ProjectID,
		})
	case domain.ActionDeleteSection:
		return nil, c.delete(ctx, "/sections/"+a.TargetID)
	case domain.ActionCreateLabel:
		return c.postCreated(ctx, "/labels", map[string]string{"name": a.Params.Name})
	case domain.ActionDeleteLabel:
		return nil, c.delete(ctx, "/labels/"+a.TargetID)
	}
	return nil, &domain.RemoteError{
		Kind: domain.RemoteTransport,
		Op:   string(a.Type),
		Err:  fmt.Errorf("unsupported action type"),
	}
}

// editLabels reads the task's current labels and writes the adjusted set
// back. Adding an existing label or removing an absent one is a no-op, which
// keeps the operation safe to retry.
func (c *Client) editLabels(ctx context.Context, taskID, label string, add bool) error {
	t, err := c.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	labels := append([]string(nil), t.Labels...)
	changed := false
	if add {
		found := false
		for _, l := range labels {
			if l == label {
				found = true
				break
			}
		}
		if !found {
			labels = append(labels, label)
			changed = true
		}
	} else {
		kept := labels[:0]
		for _, l := range labels {
			if l == label {
				changed = true
				continue
			}
			kept = append(kept, l)
		}
		labels = kept
	}

	if !changed {
		return nil
	}
	return c.post(ctx, "/tasks/"+taskID, map[string][]string{"labels": labels})
}

func createTaskBody(a domain.Action) map[string]interface{} {
	body := map[string]interface{}{"content": contentOf(a)}
	if a.Params.Description != nil {
		body["description"] = *a.Params.Description
	}
	if a.Params.Priority != nil {
		body["priority"] = *a.Params.Priority
	}
	if a.Params.DueString != nil {
		body["due_string"] = *a.Params.DueString
	}
	if len(a.Params.Labels) > 0 {
		body["labels"] = a.Params.Labels
	}
	if a.Params.ProjectID != "" {
		body["project_id"] = a.Params.ProjectID
	}
	if a.Params.SectionID != "" {
		body["section_id"] = a.Params.SectionID
	}
	return body
}

func updateTaskBody(a domain.Action) map[string]interface{} {
	body := map[string]interface{}{}
	if a.Params.Content != nil {
		body["content"] = *a.Params.Content
	}
	if a.Params.Description != nil {
		body["description"] = *a.Params.Description
	}
	if a.Params.Priority != nil {
		body["priority"] = *a.Params.Priority
	}
	if a.Params.DueString != nil {
		body["due_string"] = *a.Params.DueString
	}
	if a.Params.Labels != nil {
		body["labels"] = a.Params.Labels
	}
	return body
}

func contentOf(a domain.Action) string {
	if a.Params.Content == nil {
		return ""
	}
	return *a.Params.Content
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if err := c.statusError("GET "+path, resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.RemoteError{Kind: domain.RemoteTransport, Op: "GET " + path, Err: err}
	}
	return nil
}

// postCreated posts a creation body and returns the id of the new entity.
func (c *Client) postCreated(ctx context.Context, path string, body interface{}) (*domain.RemoteResult, error) {
	resp, err := c.do(ctx, "POST", path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if err := c.statusError("POST "+path, resp); err != nil {
		return nil, err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, &domain.RemoteError{Kind: domain.RemoteTransport, Op: "POST " + path, Err: err}
	}
	return &domain.RemoteResult{CreatedID: created.ID}, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	resp, err := c.do(ctx, "POST", path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if err := c.statusError("POST "+path, resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) delete(ctx context.Context, path string) error {
	resp, err := c.do(ctx, "DELETE", path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	return c.statusError("DELETE "+path, resp)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &domain.RemoteError{Kind: domain.RemoteTransport, Op: method + " " + path, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base()+path, reader)
	if err != nil {
		return nil, &domain.RemoteError{Kind: domain.RemoteTransport, Op: method + " " + path, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, &domain.RemoteError{Kind: domain.RemoteTransport, Op: method + " " + path, Err: err}
	}
	return resp, nil
}

// statusError maps HTTP status codes onto the remote error taxonomy. The
// caller owns retry policy; nothing here retries.
func (c *Client) statusError(op string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &domain.RemoteError{Kind: domain.RemoteNotFound, Op: op, Err: fmt.Errorf("status %s", resp.Status)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &domain.RemoteError{Kind: domain.RemoteRateLimited, Op: op, Err: fmt.Errorf("status %s", resp.Status)}
	default:
		return &domain.RemoteError{Kind: domain.RemoteTransport, Op: op, Err: fmt.Errorf("status %s", resp.Status)}
	}
}
