package stage

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/conduct/internal/flow"
	"github.com/jorge-barreto/conduct/internal/parse"
	"github.com/jorge-barreto/conduct/internal/patch"
	"github.com/jorge-barreto/conduct/internal/prompts"
	"github.com/jorge-barreto/conduct/internal/tools"
	"github.com/jorge-barreto/conduct/internal/ux"
)

// Stages owns the collaborator runtime and exposes one method per stage.
// Re-invoking a stage overwrites its owned record fields; nothing appends.
type Stages struct {
	rt *Runtime
}

func New(rt *Runtime) *Stages {
	return &Stages{rt: rt}
}

// Plan turns the goal into a plan document.
func (s *Stages) Plan(ctx context.Context, st *flow.State) error {
	text, err := s.rt.Gen.Generate(ctx, map[string]string{
		"system": prompts.Global,
		"role":   prompts.Planner,
		"goal":   st.Goal,
	})
	if err != nil {
		st.Plan = flow.Document{"error": err.Error()}
		return fmt.Errorf("plan: %w", err)
	}
	st.Plan = parse.Document(text)
	ux.StageResult("plan", fmt.Sprintf("%d fields", len(st.Plan)))
	return nil
}

// Design turns the plan into a design document and classifies the project
// kind. The classification is sticky for the remainder of the run.
func (s *Stages) Design(ctx context.Context, st *flow.State) error {
	text, err := s.rt.Gen.Generate(ctx, map[string]string{
		"system": prompts.Global,
		"role":   prompts.Architect,
		"goal":   st.Goal,
		"plan":   docYAML(st.Plan),
	})
	if err != nil {
		st.Design = flow.Document{"error": err.Error()}
		st.ProjectKind = flow.KindSimple
		return fmt.Errorf("design: %w", err)
	}
	st.Design = parse.Document(text)
	st.ProjectKind = classify(st.Design, st.Goal)
	ux.StageResult("design", string(st.ProjectKind))
	return nil
}

// fullStackTerms in the goal mark a project as full-stack even when the
// design document does not say so.
var fullStackTerms = []string{"api", "app", "fastapi", "react"}

func classify(design flow.Document, goal string) flow.ProjectKind {
	if design.GetString("project_type") == string(flow.KindFullStack) {
		return flow.KindFullStack
	}
	rendered := docYAML(design)
	if strings.Contains(rendered, "frontend") || strings.Contains(rendered, "backend") {
		return flow.KindFullStack
	}
	lower := strings.ToLower(goal)
	for _, term := range fullStackTerms {
		if strings.Contains(lower, term) {
			return flow.KindFullStack
		}
	}
	return flow.KindSimple
}

// Implement generates the first diff from the design and applies it to the
// project workspace.
func (s *Stages) Implement(ctx context.Context, st *flow.State) error {
	text, err := s.rt.Gen.Generate(ctx, map[string]string{
		"system": prompts.Global,
		"role":   prompts.Coder,
		"design": docYAML(st.Design),
	})
	if err != nil {
		st.DiffText = ""
		st.LastChangeSummary = "generation failed: " + err.Error()
		return fmt.Errorf("implement: %w", err)
	}
	s.applyDiff(st, parse.Diff(text), "Generated")
	return nil
}

// Fix generates a corrective diff from the review and test output. A fix
// invalidates the previous review.
func (s *Stages) Fix(ctx context.Context, st *flow.State) error {
	text, err := s.rt.Gen.Generate(ctx, map[string]string{
		"system":        prompts.Global,
		"role":          prompts.Fixer,
		"design":        docYAML(st.Design),
		"review":        docYAML(st.Review),
		"test_output":   testOutputYAML(st.TestOutput),
		"changed_files": st.LastChangeSummary,
	})
	if err != nil {
		// Keep the previous diff; the conductor will retry or exhaust.
		return fmt.Errorf("fix: %w", err)
	}
	s.applyDiff(st, parse.Diff(text), "Fixed")
	st.ReviewDone = false
	return nil
}

// applyDiff routes a parsed diff through the diff applier and records the
// mutation on the run record. Shared by Implement and Fix.
func (s *Stages) applyDiff(st *flow.State, diff, verb string) {
	res := patch.Apply(diff, st.ProjectDir, s.rt.Patches)
	st.DiffText = diff
	st.LastChangeSummary = fmt.Sprintf("%s %d chars, files: %v", verb, len(diff), res.FilesWritten)
	st.CodeChangedSinceLastTest = true
	if st.ProjectKind == flow.KindFullStack {
		st.BuildStatus = flow.BuildStatus{
			CodeGenerated: res.OK,
			FilesCreated:  len(res.FilesWritten) > 0,
		}
	}
	ux.StageResult("patch", fmt.Sprintf("%d file(s) written", len(res.FilesWritten)))
}

// docYAML renders a document for inclusion in a prompt context.
func docYAML(d flow.Document) string {
	if len(d) == 0 {
		return "{}"
	}
	data, err := yaml.Marshal(map[string]any(d))
	if err != nil {
		return "{}"
	}
	return string(data)
}

// testOutputYAML renders test output for a prompt. Logs are condensed so a
// chatty test run cannot crowd the rest of the context out.
func testOutputYAML(out flow.TestOutput) string {
	out.Stdout = tools.CondenseLog(out.Stdout, 40)
	out.Stderr = tools.CondenseLog(out.Stderr, 40)
	data, err := yaml.Marshal(out)
	if err != nil {
		return "{}"
	}
	return string(data)
}
