package project

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

var dirNamePattern = regexp.MustCompile(`^\d{8}_\d{6}_[a-z0-9_]*_[0-9a-f]{8}$`)

func TestCreateLaysOutSkeleton(t *testing.T) {
	m := &Manager{Root: t.TempDir()}
	p, err := m.Create("Todo App!", "build a todo app")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !dirNamePattern.MatchString(filepath.Base(p.Dir)) {
		t.Errorf("dir name %q does not match pattern", filepath.Base(p.Dir))
	}
	for _, sub := range []string{"backend", "frontend", "tests"} {
		if _, err := os.Stat(filepath.Join(p.Dir, sub)); err != nil {
			t.Errorf("missing subdir %s: %v", sub, err)
		}
	}
	reopened, err := Open(p.Dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Meta.Name != "Todo App!" {
		t.Errorf("metadata name = %q", reopened.Meta.Name)
	}
	if reopened.Meta.Goal != "build a todo app" {
		t.Errorf("metadata goal = %q", reopened.Meta.Goal)
	}
}

func TestCleanName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Todo App!", "todo_app"},
		{"  FastAPI + React  ", "fastapi_react"},
		{"already_clean", "already_clean"},
		{"", ""},
		{"a-very-long-name-that-keeps-going-and-going", "a_very_long_name_that_keeps_go"},
	}
	for _, c := range cases {
		if got := CleanName(c.in); got != c.want {
			t.Errorf("CleanName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestListFilesGlob(t *testing.T) {
	m := &Manager{Root: t.TempDir()}
	p, err := m.Create("glob", "")
	if err != nil {
		t.Fatal(err)
	}
	write := func(rel, body string) {
		t.Helper()
		abs := filepath.Join(p.Dir, rel)
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("backend/main.py", "x")
	write("frontend/index.html", "x")
	write("backend/util.py", "x")

	got, err := p.ListFiles("**/*.py")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{"backend/main.py", "backend/util.py"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListInventoriesNestedFiles(t *testing.T) {
	m := &Manager{Root: t.TempDir()}
	p, err := m.Create("inventory", "")
	if err != nil {
		t.Fatal(err)
	}
	write := func(rel, body string) {
		t.Helper()
		abs := filepath.Join(p.Dir, rel)
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("backend/main.py", "12345")
	write("backend/api/routes.py", "123")
	write("README.md", "12")

	infos, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("infos = %d, want 1", len(infos))
	}
	// Dot-prefixed bookkeeping files do not count toward the inventory.
	if infos[0].Files != 3 {
		t.Errorf("files = %d, want 3", infos[0].Files)
	}
	if infos[0].SizeBytes != 10 {
		t.Errorf("size = %d, want 10", infos[0].SizeBytes)
	}
}

func TestCleanupKeepsNewest(t *testing.T) {
	m := &Manager{Root: t.TempDir()}
	var dirs []string
	for i := 0; i < 3; i++ {
		p, err := m.Create("proj", "")
		if err != nil {
			t.Fatal(err)
		}
		// stagger created_at so ordering is deterministic
		p.Meta.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		if err := p.SaveMetadata(); err != nil {
			t.Fatal(err)
		}
		dirs = append(dirs, p.Dir)
	}

	removed, err := m.Cleanup(1)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, err := os.Stat(dirs[2]); err != nil {
		t.Errorf("newest project deleted: %v", err)
	}
	if _, err := os.Stat(dirs[0]); err == nil {
		t.Error("oldest project survived cleanup")
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := &Summary{
		RunID:        "01J8ZX",
		Goal:         "todo app",
		Iterations:   4,
		ProjectKind:  "full_stack",
		ReviewStatus: "APPROVED",
		TestsRan:     true,
		PreviewURLs:  map[string]string{"backend": "http://localhost:8000"},
		FinishedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := WriteSummary(dir, in); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out, err := LoadSummary(dir)
	if err != nil {
		t.Fatalf("LoadSummary: %v", err)
	}
	if out.RunID != in.RunID || out.Iterations != in.Iterations || out.ReviewStatus != in.ReviewStatus {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if out.PreviewURLs["backend"] != "http://localhost:8000" {
		t.Errorf("preview urls = %v", out.PreviewURLs)
	}
}

func TestCurrentPrefersSwitched(t *testing.T) {
	m := &Manager{Root: t.TempDir()}
	a, err := m.Create("first", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create("second", ""); err != nil {
		t.Fatal(err)
	}
	if err := m.Switch(a.Dir); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	cur, err := m.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur != a.Dir {
		t.Errorf("current = %q, want %q", cur, a.Dir)
	}
}
