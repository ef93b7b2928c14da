package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/architect/pkg/domain/review"
)

func newTestRepo(t *testing.T) *FilesystemRepository {
	t.Helper()
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	return repo
}

func TestInitializeCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)

	if repo.IsInitialized() {
		t.Error("fresh directory should not report initialized")
	}
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	if !repo.IsInitialized() {
		t.Error("Initialize did not create the workspace")
	}

	for _, sub := range []string{
		ArchitectDir,
		filepath.Join(ArchitectDir, SessionsDir),
		filepath.Join(ArchitectDir, SessionsDir, ArchiveDir),
	} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Errorf("missing %s: %v", sub, err)
		}
	}
}

func TestResolvePathRejectsTraversal(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())

	bad := [][]string{
		{},
		{""},
		{".."},
		{"../../etc/passwd"},
		{"sessions/../../secret"},
		{`sessions\evil`},
	}
	for _, parts := range bad {
		if _, err := repo.ResolvePath(parts...); err == nil {
			t.Errorf("ResolvePath(%v) accepted an invalid path", parts)
		}
	}

	if _, err := repo.ResolvePath(SessionsDir, "abc.json"); err != nil {
		t.Errorf("valid path rejected: %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	session := &review.Session{
		ID:          "s-roundtrip",
		Status:      review.StatusInProgress,
		CurrentStep: 2,
		StepResults: []review.StepResult{
			{StepID: review.StepClearInbox, Input: review.StepInput{CapturedCount: 3}},
			{StepID: review.StepActiveHonesty, Input: review.StepInput{
				Resolutions: []review.Resolution{{TaskID: "1", Decision: review.DecisionKeep}},
			}},
		},
		PlanDraft: review.PlanDraft{FocusAreas: []string{"Health"}},
	}

	if err := repo.SaveSession(session); err != nil {
		t.Fatal(err)
	}

	loaded, err := repo.LoadSession("s-roundtrip")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.CurrentStep != 2 || len(loaded.StepResults) != 2 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.StepResults[0].Input.CapturedCount != 3 {
		t.Error("step input did not survive the round trip")
	}
	if loaded.PlanDraft.FocusAreas[0] != "Health" {
		t.Error("plan draft did not survive the round trip")
	}
}

func TestSaveSessionRejectsMissingID(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.SaveSession(&review.Session{}); err == nil {
		t.Error("session without id must be rejected")
	}
	if err := repo.SaveSession(nil); err == nil {
		t.Error("nil session must be rejected")
	}
}

func TestLoadSessionMissing(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.LoadSession("nope"); err == nil {
		t.Error("loading an unknown session must fail")
	}
}

func TestListAndArchiveSessions(t *testing.T) {
	repo := newTestRepo(t)

	for _, id := range []string{"a", "b"} {
		if err := repo.SaveSession(&review.Session{ID: id, Status: review.StatusInProgress}); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := repo.ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("ListSessions = %v, want 2", ids)
	}

	if err := repo.ArchiveSession("a"); err != nil {
		t.Fatal(err)
	}

	ids, err = repo.ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "b" {
		t.Errorf("ListSessions after archive = %v, want [b]", ids)
	}

	// The archived document is kept, not deleted.
	archived, err := repo.ResolvePath(SessionsDir, ArchiveDir, "a.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(archived); err != nil {
		t.Errorf("archived session missing: %v", err)
	}

	if err := repo.ArchiveSession("a"); err == nil {
		t.Error("archiving twice must fail")
	}
}

func TestProfileRoundTripAndDefault(t *testing.T) {
	repo := newTestRepo(t)

	// Missing profile falls back to the default.
	p, err := repo.LoadProfile()
	if err != nil {
		t.Fatal(err)
	}
	if p.WaitingLabel != review.DefaultProfile().WaitingLabel {
		t.Errorf("default profile = %+v", p)
	}

	custom := &review.Profile{
		Name:          "Mine",
		WaitingLabel:  "blocked",
		WeeklyLabel:   "focus",
		Areas:         map[string][]string{"Body": {"Health"}},
		WeeklyTouches: map[string]int{"Body": 2},
		MaxDueToday:   9,
	}
	if err := repo.SaveProfile(custom); err != nil {
		t.Fatal(err)
	}

	loaded, err := repo.LoadProfile()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.WeeklyLabel != "focus" || loaded.WeeklyTouches["Body"] != 2 {
		t.Errorf("loaded profile = %+v", loaded)
	}
}

func TestLoadEventsSkipsMalformedLines(t *testing.T) {
	repo := newTestRepo(t)

	path, err := repo.ResolvePath(EventsFile)
	if err != nil {
		t.Fatal(err)
	}
	content := `{"id":"e1","action":"translate","actor":"ai"}
this line is garbage
{"id":"e2","action":"undo","actor":"human"}

`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	events, err := repo.LoadEvents()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 with the garbage line skipped", len(events))
	}
	if events[0].ID != "e1" || events[1].ID != "e2" {
		t.Errorf("events = %+v", events)
	}
}

func TestUsageRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	stats, err := repo.LoadUsage()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalCommands != 0 || stats.ProviderStats == nil {
		t.Errorf("fresh usage = %+v", stats)
	}

	stats.TotalCommands = 5
	stats.ProviderStats["gemini:input"] = 1200
	if err := repo.UpdateUsage(*stats); err != nil {
		t.Fatal(err)
	}

	loaded, err := repo.LoadUsage()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.TotalCommands != 5 || loaded.ProviderStats["gemini:input"] != 1200 {
		t.Errorf("loaded usage = %+v", loaded)
	}
}
