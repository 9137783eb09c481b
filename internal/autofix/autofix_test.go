package autofix

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jorge-barreto/conduct/internal/tools"
)

// fakeProc replays a scripted sequence of process results.
type fakeProc struct {
	results []tools.ProcResult
	calls   int
}

func (f *fakeProc) RunProcess(ctx context.Context, command string, timeout time.Duration, cwd string) (tools.ProcResult, error) {
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i], nil
}

func newLoop(proc *fakeProc) *Loop {
	return &Loop{Proc: proc, FS: &tools.Toolbox{}}
}

func TestSuccessFirstAttempt(t *testing.T) {
	proc := &fakeProc{results: []tools.ProcResult{{ExitCode: 0}}}
	res := newLoop(proc).Run(context.Background(), t.TempDir(), "python3 main.py")
	if !res.Success {
		t.Error("expected success")
	}
	if res.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", res.Attempts)
	}
	if res.NeedsFixing {
		t.Error("clean run should not need fixing")
	}
}

func TestMissingModulePinnedThenSucceeds(t *testing.T) {
	dir := t.TempDir()
	proc := &fakeProc{results: []tools.ProcResult{
		{ExitCode: 1, Stderr: "ModuleNotFoundError: No module named 'fastapi'"},
		{ExitCode: 0},
	}}
	res := newLoop(proc).Run(context.Background(), dir, "python3 main.py")

	if !res.Success {
		t.Fatalf("expected eventual success: %+v", res)
	}
	if res.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", res.Attempts)
	}
	reqs, err := os.ReadFile(filepath.Join(dir, "requirements.txt"))
	if err != nil {
		t.Fatalf("requirements.txt not written: %v", err)
	}
	if !strings.Contains(string(reqs), "fastapi==0.104.1") {
		t.Errorf("requirements.txt = %q, want fastapi pin", reqs)
	}
	if len(res.Errors) != 1 || res.Errors[0].Kind != "module_not_found" {
		t.Errorf("errors = %+v", res.Errors)
	}
}

func TestUnknownModuleAppendedBare(t *testing.T) {
	dir := t.TempDir()
	proc := &fakeProc{results: []tools.ProcResult{
		{ExitCode: 1, Stderr: "ModuleNotFoundError: No module named 'leftpadpy'"},
		{ExitCode: 0},
	}}
	newLoop(proc).Run(context.Background(), dir, "python3 main.py")

	reqs, _ := os.ReadFile(filepath.Join(dir, "requirements.txt"))
	line := strings.TrimSpace(string(reqs))
	if line != "leftpadpy" {
		t.Errorf("requirements.txt = %q, want bare module name", line)
	}
}

func TestNameErrorGetsImportPrepended(t *testing.T) {
	dir := t.TempDir()
	src := "def main():\n    print(os.getcwd())\n"
	if err := os.WriteFile(filepath.Join(dir, "main.py"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	proc := &fakeProc{results: []tools.ProcResult{
		{ExitCode: 1, Stderr: "NameError: name 'os' is not defined"},
		{ExitCode: 0},
	}}
	res := newLoop(proc).Run(context.Background(), dir, "python3 main.py")

	if !res.Success {
		t.Fatalf("expected success: %+v", res)
	}
	got, _ := os.ReadFile(filepath.Join(dir, "main.py"))
	if !strings.HasPrefix(string(got), "import os\n") {
		t.Errorf("import not prepended: %q", got)
	}
}

func TestStopsWhenNoFixApplies(t *testing.T) {
	proc := &fakeProc{results: []tools.ProcResult{
		{ExitCode: 1, Stderr: "ZeroDivisionError: division by zero"},
	}}
	res := newLoop(proc).Run(context.Background(), t.TempDir(), "python3 main.py")

	if res.Success {
		t.Error("should not report success")
	}
	if !res.NeedsFixing {
		t.Error("unresolved failure must be flagged for the fix stage")
	}
	if proc.calls != 1 {
		t.Errorf("executions = %d, want 1 (stop on first no-fix attempt)", proc.calls)
	}
}

func TestRepeatedFingerprintEndsLoop(t *testing.T) {
	dir := t.TempDir()
	// Pin applies on attempt 1, but the identical error recurs.
	stderr := "ModuleNotFoundError: No module named 'fastapi'"
	proc := &fakeProc{results: []tools.ProcResult{
		{ExitCode: 1, Stderr: stderr},
		{ExitCode: 1, Stderr: stderr},
		{ExitCode: 1, Stderr: stderr},
	}}
	res := newLoop(proc).Run(context.Background(), dir, "python3 main.py")

	if proc.calls != 2 {
		t.Errorf("executions = %d, want 2 (repeat fingerprint stops early)", proc.calls)
	}
	if !res.NeedsFixing {
		t.Error("expected needs_fixing")
	}
}

func TestNeverExceedsThreeAttempts(t *testing.T) {
	dir := t.TempDir()
	proc := &fakeProc{results: []tools.ProcResult{
		{ExitCode: 1, Stderr: "ModuleNotFoundError: No module named 'aaa'"},
		{ExitCode: 1, Stderr: "ModuleNotFoundError: No module named 'bbb'"},
		{ExitCode: 1, Stderr: "ModuleNotFoundError: No module named 'ccc'"},
		{ExitCode: 1, Stderr: "ModuleNotFoundError: No module named 'ddd'"},
	}}
	res := newLoop(proc).Run(context.Background(), dir, "python3 main.py")

	if proc.calls > MaxAttempts {
		t.Errorf("executions = %d, cap is %d", proc.calls, MaxAttempts)
	}
	if res.Attempts > MaxAttempts {
		t.Errorf("attempts = %d, cap is %d", res.Attempts, MaxAttempts)
	}
}

func TestAdviceRecordedNotApplied(t *testing.T) {
	proc := &fakeProc{results: []tools.ProcResult{
		{ExitCode: 1, Stderr: "requests.exceptions.ConnectionError: refused"},
	}}
	res := newLoop(proc).Run(context.Background(), t.TempDir(), "python3 main.py")

	found := false
	for _, a := range res.Advice {
		if strings.Contains(a, "service is running") {
			found = true
		}
	}
	if !found {
		t.Errorf("connection advice missing: %v", res.Advice)
	}
	if len(res.FixesApplied) != 0 {
		t.Errorf("advice must not be applied as a fix: %v", res.FixesApplied)
	}
}
