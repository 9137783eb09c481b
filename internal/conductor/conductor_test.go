package conductor

import (
	"testing"

	"github.com/jorge-barreto/conduct/internal/flow"
)

func record() *flow.State {
	return flow.New("build a thing", "/tmp/proj", 5)
}

func TestNoDiffMeansPatchCode(t *testing.T) {
	st := record()
	ctl := Decide(st)
	if ctl.NextAction != flow.ActionPatchCode {
		t.Errorf("action = %s, want PATCH_CODE", ctl.NextAction)
	}
}

func TestSimpleChangedCodeRunsTests(t *testing.T) {
	st := record()
	st.DiffText = "Add File: main.py\nprint('hi')"
	st.CodeChangedSinceLastTest = true
	ctl := Decide(st)
	if ctl.NextAction != flow.ActionRunTests {
		t.Errorf("action = %s, want RUN_TESTS", ctl.NextAction)
	}
}

func TestFullStackUnhealthyStartsServices(t *testing.T) {
	st := record()
	st.DiffText = "diff"
	st.CodeChangedSinceLastTest = true
	st.ProjectKind = flow.KindFullStack
	ctl := Decide(st)
	if ctl.NextAction != flow.ActionStartServices {
		t.Errorf("action = %s, want START_SERVICES", ctl.NextAction)
	}
}

func TestFullStackHealthyRunsTests(t *testing.T) {
	st := record()
	st.DiffText = "diff"
	st.CodeChangedSinceLastTest = true
	st.ProjectKind = flow.KindFullStack
	st.ServicesStatus.Healthy = true
	ctl := Decide(st)
	if ctl.NextAction != flow.ActionRunTests {
		t.Errorf("action = %s, want RUN_TESTS", ctl.NextAction)
	}
}

func TestGreenTestsNeedReview(t *testing.T) {
	st := record()
	st.DiffText = "diff"
	st.TestOutput = flow.TestOutput{ExitCode: 0, Ran: true}
	ctl := Decide(st)
	if ctl.NextAction != flow.ActionReview {
		t.Errorf("action = %s, want REVIEW", ctl.NextAction)
	}
}

func TestApprovedGoesToPreview(t *testing.T) {
	st := record()
	st.DiffText = "diff"
	st.ReviewDone = true
	st.Review = flow.Document{"status": "APPROVED"}
	ctl := Decide(st)
	if ctl.NextAction != flow.ActionPreview {
		t.Errorf("action = %s, want PREVIEW", ctl.NextAction)
	}
}

func TestUnapprovedReviewLoopsToPatchCode(t *testing.T) {
	st := record()
	st.DiffText = "diff"
	st.ReviewDone = true
	st.Review = flow.Document{"status": "CHANGES_REQUIRED"}
	st.TestOutput = flow.TestOutput{ExitCode: 1, Ran: true}
	ctl := Decide(st)
	if ctl.NextAction != flow.ActionPatchCode {
		t.Errorf("action = %s, want PATCH_CODE", ctl.NextAction)
	}
}

func TestBudgetOverridesEverything(t *testing.T) {
	st := record()
	st.Iteration = 5
	st.MaxIterations = 5
	// Fields that would otherwise route elsewhere.
	st.DiffText = ""
	st.CodeChangedSinceLastTest = true
	ctl := Decide(st)
	if ctl.NextAction != flow.ActionPreview {
		t.Errorf("action = %s, want PREVIEW on exhausted budget", ctl.NextAction)
	}
}

func TestIterationIncrementsOncePerDecision(t *testing.T) {
	st := record()
	st.MaxIterations = 100
	for n := 1; n <= 10; n++ {
		Decide(st)
		if st.Iteration != n {
			t.Fatalf("after %d decisions iteration = %d", n, st.Iteration)
		}
	}
}

func TestActionAlwaysInEnumeration(t *testing.T) {
	records := []*flow.State{
		record(),
		func() *flow.State { st := record(); st.DiffText = "x"; return st }(),
		func() *flow.State {
			st := record()
			st.DiffText = "x"
			st.ReviewDone = true
			st.Review = flow.Document{"status": "garbage"}
			st.TestOutput = flow.TestOutput{ExitCode: 2, Ran: true}
			return st
		}(),
	}
	for i, st := range records {
		ctl := Decide(st)
		if !ctl.NextAction.Valid() {
			t.Errorf("record %d produced non-enum action %q", i, ctl.NextAction)
		}
	}
}

func TestCheckpointScheduleFirstSixteen(t *testing.T) {
	for iter := 0; iter <= 16; iter++ {
		st := record()
		st.MaxIterations = 100
		st.Iteration = iter
		ctl := Decide(st)
		want := iter > 0 && iter%8 == 0
		if ctl.Checkpoint.Required != want {
			t.Errorf("iteration %d: checkpoint = %v, want %v", iter, ctl.Checkpoint.Required, want)
		}
		if want && ctl.Checkpoint.Reason != "Periodic checkpoint" {
			t.Errorf("iteration %d: reason = %q", iter, ctl.Checkpoint.Reason)
		}
	}
}

func TestChangedCodeNeverReviewsBeforeTesting(t *testing.T) {
	kinds := []flow.ProjectKind{flow.KindSimple, flow.KindFullStack}
	for _, kind := range kinds {
		st := record()
		st.MaxIterations = 100
		st.DiffText = "diff"
		st.CodeChangedSinceLastTest = true
		st.ProjectKind = kind
		st.TestOutput = flow.TestOutput{ExitCode: 0, Ran: true}
		ctl := Decide(st)
		if ctl.NextAction == flow.ActionReview || ctl.NextAction == flow.ActionPreview {
			t.Errorf("kind %s: changed code routed to %s before tests", kind, ctl.NextAction)
		}
	}
}

func TestServiceChecksFromDesignPorts(t *testing.T) {
	st := record()
	st.DiffText = "diff"
	st.ProjectKind = flow.KindFullStack
	st.Design = flow.Document{
		"deployment": map[string]any{
			"ports": map[string]any{"backend": 8000, "frontend": 3000},
		},
	}
	ctl := Decide(st)
	if len(ctl.ServiceChecks) != 2 {
		t.Fatalf("service checks = %v", ctl.ServiceChecks)
	}
	if ctl.ServiceChecks[0].Path != "/health" || ctl.ServiceChecks[0].Port != 8000 {
		t.Errorf("backend check = %+v", ctl.ServiceChecks[0])
	}
	if ctl.ServiceChecks[1].Path != "/" || ctl.ServiceChecks[1].Expected != 200 {
		t.Errorf("frontend check = %+v", ctl.ServiceChecks[1])
	}
}

func TestServiceChecksFallBackToConfiguredPorts(t *testing.T) {
	st := record()
	st.DiffText = "diff"
	st.ProjectKind = flow.KindFullStack
	st.Ports = flow.Ports{Backend: 8000, Frontend: 3000}
	ctl := Decide(st)
	if len(ctl.ServiceChecks) != 2 {
		t.Fatalf("port-less design must fall back to configured ports, got %v", ctl.ServiceChecks)
	}
	if ctl.ServiceChecks[0].Port != 8000 || ctl.ServiceChecks[0].Path != "/health" {
		t.Errorf("backend check = %+v", ctl.ServiceChecks[0])
	}
	if ctl.ServiceChecks[1].Port != 3000 || ctl.ServiceChecks[1].Path != "/" {
		t.Errorf("frontend check = %+v", ctl.ServiceChecks[1])
	}
}

func TestDesignPortsWinOverConfiguredPorts(t *testing.T) {
	st := record()
	st.DiffText = "diff"
	st.ProjectKind = flow.KindFullStack
	st.Ports = flow.Ports{Backend: 8000, Frontend: 3000}
	st.Design = flow.Document{
		"deployment": map[string]any{
			"ports": map[string]any{"backend": 9999},
		},
	}
	ctl := Decide(st)
	if len(ctl.ServiceChecks) != 2 {
		t.Fatalf("service checks = %v", ctl.ServiceChecks)
	}
	if ctl.ServiceChecks[0].Port != 9999 {
		t.Errorf("design-assigned backend port must win, got %+v", ctl.ServiceChecks[0])
	}
	if ctl.ServiceChecks[1].Port != 3000 {
		t.Errorf("frontend must fall back, got %+v", ctl.ServiceChecks[1])
	}
}

func TestRouteAfterPatchCode(t *testing.T) {
	st := record()
	if got := RouteAfterPatchCode(st); got != ActionImplement {
		t.Errorf("fresh record routes to %s, want IMPLEMENT", got)
	}
	st.ReviewDone = true
	st.Review = flow.Document{"status": "CHANGES_REQUIRED"}
	if got := RouteAfterPatchCode(st); got != ActionFix {
		t.Errorf("rejected review routes to %s, want FIX", got)
	}
	st.Review = flow.Document{"status": "APPROVED"}
	if got := RouteAfterPatchCode(st); got != ActionImplement {
		t.Errorf("approved review routes to %s, want IMPLEMENT", got)
	}
}

func TestRouteAfterRun(t *testing.T) {
	st := record()
	st.TestOutput = flow.TestOutput{ExitCode: 0, Ran: true}
	if got := RouteAfterRun(st); got != ActionConductor {
		t.Errorf("passing simple run routes to %s", got)
	}

	st.TestOutput.ExitCode = 1
	if got := RouteAfterRun(st); got != ActionFix {
		t.Errorf("failing run routes to %s, want FIX", got)
	}

	st.TestOutput.ExitCode = 0
	st.ProjectKind = flow.KindFullStack
	st.ServicesStatus.Healthy = false
	if got := RouteAfterRun(st); got != ActionFix {
		t.Errorf("unhealthy full-stack run routes to %s, want FIX", got)
	}
	st.ServicesStatus.Healthy = true
	if got := RouteAfterRun(st); got != ActionConductor {
		t.Errorf("healthy full-stack run routes to %s", got)
	}
}
