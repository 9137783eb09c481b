// Package conductor is the decision state machine: a pure function from the
// run record to the next action, plus the two routing functions the graph
// driver consults after PatchCode and Run.
package conductor

import (
	"github.com/jorge-barreto/conduct/internal/flow"
)

// Decide maps the run record to a control document and increments the
// iteration counter. The branch order is load-bearing; the budget check is
// computed after every other branch and applied as an override.
func Decide(st *flow.State) flow.Control {
	st.TakeSnapshot()

	fullStack := st.ProjectKind == flow.KindFullStack

	var action flow.Action
	var rationale string
	switch {
	case st.DiffText == "":
		action, rationale = flow.ActionPatchCode, "No code generated yet"
	case fullStack && st.CodeChangedSinceLastTest && !st.ServicesStatus.Healthy:
		action, rationale = flow.ActionStartServices, "Code changed, services must start first"
	case fullStack && st.CodeChangedSinceLastTest && st.ServicesStatus.Healthy:
		action, rationale = flow.ActionRunTests, "Services healthy, ready to test"
	case st.CodeChangedSinceLastTest:
		action, rationale = flow.ActionRunTests, "Code changed, tests needed"
	case st.TestOutput.Ran && st.TestOutput.ExitCode == 0 && !st.ReviewDone:
		action, rationale = flow.ActionReview, "Tests green, review needed"
	case st.ReviewStatus() == flow.ReviewApproved:
		action, rationale = flow.ActionPreview, "Code approved"
	default:
		action, rationale = flow.ActionPatchCode, "Issues found, need to fix"
	}

	// Budget override, deliberately last.
	if st.Iteration >= st.MaxIterations {
		action = flow.ActionPreview
		rationale = "Maximum iterations reached, showing preview"
	}

	ctl := flow.Control{
		NextAction: action,
		Rationale:  rationale,
		Checkpoint: flow.Checkpoint{
			Required: st.Iteration > 0 && st.Iteration%8 == 0,
		},
	}
	if ctl.Checkpoint.Required {
		ctl.Checkpoint.Reason = "Periodic checkpoint"
	}

	if fullStack {
		ctl.ServiceChecks = serviceChecks(st)
	}

	st.Control = ctl
	st.Iteration++
	return ctl
}

// serviceChecks derives the probes the runner should perform from the
// design's deployment ports, falling back to the record's configured ports
// when the design assigns none.
func serviceChecks(st *flow.State) []flow.ProbeSpec {
	ports := st.Design.Sub("deployment").Sub("ports")
	var specs []flow.ProbeSpec
	if p := portOr(ports, "backend", st.Ports.Backend); p != 0 {
		specs = append(specs, flow.ProbeSpec{Port: p, Path: "/health", Expected: 200})
	}
	if p := portOr(ports, "frontend", st.Ports.Frontend); p != 0 {
		specs = append(specs, flow.ProbeSpec{Port: p, Path: "/", Expected: 200})
	}
	return specs
}

func portOr(ports flow.Document, slot string, fallback int) int {
	if p := ports.GetInt(slot); p != 0 {
		return p
	}
	return fallback
}

// RouteAfterPatchCode distinguishes first code generation from correction:
// an unapproved completed review routes to Fix, everything else to
// Implement.
func RouteAfterPatchCode(st *flow.State) flow.Action {
	if st.ReviewDone && st.ReviewStatus() != flow.ReviewApproved {
		return ActionFix
	}
	return ActionImplement
}

// RouteAfterRun sends a passing run back to the conductor and a failing one
// to Fix. For full-stack projects, passing additionally requires healthy
// services.
func RouteAfterRun(st *flow.State) flow.Action {
	if st.TestOutput.ExitCode == 0 &&
		(st.ProjectKind != flow.KindFullStack || st.ServicesStatus.Healthy) {
		return ActionConductor
	}
	return ActionFix
}

// Internal routing targets used by the graph driver; not part of the
// conductor's public action enumeration.
const (
	ActionImplement flow.Action = "IMPLEMENT"
	ActionFix       flow.Action = "FIX"
	ActionConductor flow.Action = "CONDUCTOR"
)
