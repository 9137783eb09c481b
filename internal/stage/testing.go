package stage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jorge-barreto/conduct/internal/flow"
	"github.com/jorge-barreto/conduct/internal/parse"
	"github.com/jorge-barreto/conduct/internal/prompts"
	"github.com/jorge-barreto/conduct/internal/ux"
)

const testTimeout = 120 * time.Second

// TestAuthor generates a test bundle and guide for the current workspace.
func (s *Stages) TestAuthor(ctx context.Context, st *flow.State) error {
	tree := "No files found"
	if files, err := s.rt.FS.ListFiles(st.ProjectDir); err == nil && len(files) > 0 {
		tree = strings.Join(files, "\n")
	}

	text, err := s.rt.Gen.Generate(ctx, map[string]string{
		"system":         prompts.Global,
		"role":           prompts.Tester,
		"design":         docYAML(st.Design),
		"workspace_tree": tree,
	})
	if err != nil {
		st.TestsText = "# No tests generated"
		st.TestGuide = "how_to_run: python_test_runner"
		st.TestsPresent = false
		return fmt.Errorf("test author: %w", err)
	}

	st.TestsText = parse.Tests(text)
	st.TestGuide = parse.TestGuide(text)
	st.TestsPresent = len(strings.TrimSpace(st.TestsText)) > 0
	ux.StageResult("test-author", fmt.Sprintf("%d chars", len(st.TestsText)))
	return nil
}

// entryPoints, in probe order. The first one present makes the project
// directly runnable and triggers the auto-fix loop before tests.
var entryPoints = []string{"main.py", "backend/main.py", "app.py"}

// Run executes the test bundle and, for full-stack projects, the service
// probes the conductor requested. Clears the code-changed flag regardless
// of outcome.
func (s *Stages) Run(ctx context.Context, st *flow.State) error {
	if s.rt.Fixer != nil {
		if entry, ok := s.findEntry(st.ProjectDir); ok {
			st.ExecutionResult = s.rt.Fixer.Run(ctx, st.ProjectDir, "python3 "+entry)
		}
	}

	out := s.runTests(ctx, st)

	if st.ProjectKind == flow.KindFullStack {
		checks := s.probeServices(ctx, st.Control.ServiceChecks)
		out.ServiceChecks = checks
		healthy := true
		for _, c := range checks {
			if !c.Success {
				healthy = false
			}
		}
		st.ServicesStatus.Known = true
		st.ServicesStatus.Healthy = healthy
		st.ServicesStatus.Checks = checks
	}

	st.TestOutput = out
	st.CodeChangedSinceLastTest = false

	verdict := "PASSED"
	if out.ExitCode != 0 {
		verdict = fmt.Sprintf("FAILED (exit %d)", out.ExitCode)
	}
	ux.StageResult("run", verdict)
	return nil
}

func (s *Stages) findEntry(projectDir string) (string, bool) {
	for _, entry := range entryPoints {
		if _, err := s.rt.FS.ReadFile(filepath.Join(projectDir, entry)); err == nil {
			return entry, true
		}
	}
	return "", false
}

// runTests dispatches on the test guide: the built-in runner executes the
// test bundle in isolation, anything else runs as a shell command in the
// project directory. Collaborator failure degrades to a synthetic failing
// output rather than an error.
func (s *Stages) runTests(ctx context.Context, st *flow.State) flow.TestOutput {
	how := parse.HowToRun(st.TestGuide)
	if how == "python_test_runner" {
		proc, err := s.rt.Exec.Execute(ctx, st.TestsText)
		if err != nil {
			return flow.TestOutput{ExitCode: 1, Stderr: "test execution failed: " + err.Error(), Ran: true}
		}
		return flow.TestOutput{ExitCode: proc.ExitCode, Stdout: proc.Stdout, Stderr: proc.Stderr, Ran: true}
	}

	proc, err := s.rt.Proc.RunProcess(ctx, how, testTimeout, st.ProjectDir)
	if err != nil {
		return flow.TestOutput{ExitCode: 1, Stderr: "test command failed: " + err.Error(), Ran: true}
	}
	return flow.TestOutput{ExitCode: proc.ExitCode, Stdout: proc.Stdout, Stderr: proc.Stderr, Ran: true}
}

// probeServices runs the conductor-requested health probes. An unreachable
// service is a failed check, not an error.
func (s *Stages) probeServices(ctx context.Context, specs []flow.ProbeSpec) []flow.ServiceCheck {
	var checks []flow.ServiceCheck
	for _, spec := range specs {
		url := fmt.Sprintf("http://localhost:%d%s", spec.Port, spec.Path)
		probe, err := s.rt.Probe.Probe(ctx, url, spec.Expected, 5*time.Second)
		check := flow.ServiceCheck{URL: url}
		if err != nil {
			check.Error = "Service check failed"
		} else {
			check.Success = probe.Success
			check.StatusCode = probe.StatusCode
		}
		ux.ServiceCheck("service", url, check.Success)
		checks = append(checks, check)
	}
	return checks
}
