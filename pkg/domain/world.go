package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Due describes a task deadline as the remote service reports it.
type Due struct {
	Date      string `json:"date"` // YYYY-MM-DD
	String    string `json:"string,omitempty"`
	Recurring bool   `json:"is_recurring,omitempty"`
}

// Task is one remote task as captured at fetch time.
type Task struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Description string    `json:"description,omitempty"`
	ProjectID   string    `json:"project_id,omitempty"`
	SectionID   string    `json:"section_id,omitempty"`
	Priority    int       `json:"priority"` // 1 (lowest) .. 4 (urgent)
	Labels      []string  `json:"labels,omitempty"`
	Due         *Due      `json:"due,omitempty"`
	Completed   bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Project is one remote project.
type Project struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsInbox bool   `json:"is_inbox_project,omitempty"`
}

// Section is one remote section within a project.
type Section struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}

// RenderOptions controls which tasks make it into the rendered LLM context
// verbatim; everything else is collapsed into per-project summary counts.
type RenderOptions struct {
	MinPriority     int // tasks at or above this priority are always shown
	DueSoonDays     int
	IncludeOverdue  bool
	AlwaysShowInbox bool
	// FilterThreshold disables filtering entirely for small task lists so
	// the model sees everything when it can afford to.
	FilterThreshold int
	Today           time.Time // zero means time.Now()
}

// DefaultRenderOptions returns the filtering defaults the assistant ships with.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		MinPriority:     3,
		DueSoonDays:     7,
		IncludeOverdue:  true,
		AlwaysShowInbox: true,
		FilterThreshold: 60,
	}
}

// WorldState is one immutable snapshot of the remote task list. A refresh
// produces a wholly new instance; nothing mutates an existing snapshot, so
// in-flight operations never observe a half-updated world.
type WorldState struct {
	Tasks           []Task
	Projects        map[string]Project
	Sections        map[string]Section
	RenderedContext string
	FetchedAt       time.Time
}

// NewWorldState builds a snapshot and its LLM-oriented rendering in one go.
// Task order is preserved as fetched; the rendering sorts projects by ID so
// repeated fetches of identical data produce identical context strings.
func NewWorldState(tasks []Task, projects []Project, sections []Section, opts RenderOptions) *WorldState {
	pm := make(map[string]Project, len(projects))
	for _, p := range projects {
		pm[p.ID] = p
	}
	sm := make(map[string]Section, len(sections))
	for _, s := range sections {
		sm[s.ID] = s
	}

	w := &WorldState{
		Tasks:     tasks,
		Projects:  pm,
		Sections:  sm,
		FetchedAt: time.Now(),
	}
	w.RenderedContext = renderContext(tasks, projects, opts)
	return w
}

// FindTask returns the snapshot task with the given id, if present.
func (w *WorldState) FindTask(id string) (Task, bool) {
	for _, t := range w.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// HasProject reports whether the snapshot knows the given project id.
func (w *WorldState) HasProject(id string) bool {
	_, ok := w.Projects[id]
	return ok
}

// HasSection reports whether the snapshot knows the given section id.
func (w *WorldState) HasSection(id string) bool {
	_, ok := w.Sections[id]
	return ok
}

// InboxProjectID returns the id of the inbox project, or "" when the fetch
// did not include one.
func (w *WorldState) InboxProjectID() string {
	for _, p := range w.Projects {
		if p.IsInbox || p.Name == "Inbox" {
			return p.ID
		}
	}
	return ""
}

func renderContext(tasks []Task, projects []Project, opts RenderOptions) string {
	if opts.Today.IsZero() {
		opts.Today = time.Now()
	}
	today := opts.Today.Truncate(24 * time.Hour)

	pm := make(map[string]Project, len(projects))
	inboxID := ""
	for _, p := range projects {
		pm[p.ID] = p
		if p.IsInbox || p.Name == "Inbox" {
			inboxID = p.ID
		}
	}

	filtering := len(tasks) > opts.FilterThreshold

	var focus []Task
	hidden := map[string]int{} // project id -> suppressed count
	for _, t := range tasks {
		if !filtering || taskIsRelevant(t, inboxID, today, opts) {
			focus = append(focus, t)
			continue
		}
		hidden[t.ProjectID]++
	}

	var b strings.Builder
	b.WriteString("Current Projects:\n")
	sorted := make([]Project, len(projects))
	copy(sorted, projects)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, p := range sorted {
		fmt.Fprintf(&b, "ID: %s | Name: %s\n", p.ID, p.Name)
	}

	b.WriteString("\nFocus Tasks (Overdue, Due Soon, High Priority, or Inbox):\n")
	if len(focus) == 0 {
		b.WriteString("No focus tasks.\n")
	}
	for _, t := range focus {
		due := "None"
		if t.Due != nil {
			due = t.Due.String
			if due == "" {
				due = t.Due.Date
			}
		}
		pname := "Unknown"
		if p, ok := pm[t.ProjectID]; ok {
			pname = p.Name
		}
		fmt.Fprintf(&b, "ID: %s | Content: %s | Priority: %d | Due: %s | Project: %s\n",
			t.ID, t.Content, t.Priority, due, pname)
	}

	b.WriteString("\nTask Summaries (Hidden):\n")
	if len(hidden) == 0 {
		b.WriteString("No other tasks.\n")
	} else {
		ids := make([]string, 0, len(hidden))
		for id := range hidden {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			pname := "Unknown"
			if p, ok := pm[id]; ok {
				pname = p.Name
			}
			fmt.Fprintf(&b, "%s: %d other tasks hidden (low priority/future)\n", pname, hidden[id])
		}
	}

	return b.String()
}

func taskIsRelevant(t Task, inboxID string, today time.Time, opts RenderOptions) bool {
	if opts.AlwaysShowInbox && t.ProjectID == inboxID {
		return true
	}
	if t.Priority >= opts.MinPriority {
		return true
	}
	if t.Due != nil && t.Due.Date != "" {
		due, err := time.Parse("2006-01-02", t.Due.Date)
		if err == nil {
			diff := int(due.Sub(today).Hours() / 24)
			if opts.IncludeOverdue && diff < 0 {
				return true
			}
			if diff >= 0 && diff <= opts.DueSoonDays {
				return true
			}
		}
	}
	return false
}
