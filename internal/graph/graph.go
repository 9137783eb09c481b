// Package graph owns the node and edge tables wiring the stage executors
// and the conductor together, and the driver that walks them to a terminal
// state.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/jorge-barreto/conduct/internal/conductor"
	"github.com/jorge-barreto/conduct/internal/flow"
	"github.com/jorge-barreto/conduct/internal/stage"
	"github.com/jorge-barreto/conduct/internal/ux"
)

// Node names. nodeEnd is the single terminal.
const (
	NodePlan      = "plan"
	NodeDesign    = "design"
	NodeImplement = "implement"
	NodeConductor = "conductor"
	NodeTester    = "tester"
	NodeRunner    = "runner"
	NodeReviewer  = "reviewer"
	NodeFixer     = "fixer"
	NodeServices  = "services"
	NodePreview   = "preview"
	nodeEnd       = "end"
)

// StepCap bounds total node visits per run. Exceeding it is a fatal abort,
// unlike the iteration budget which forces a graceful preview.
const StepCap = 30

// ErrStepLimit is returned when a run exceeds StepCap. The run record is
// returned as-is with no further mutation.
var ErrStepLimit = errors.New("graph step limit exceeded")

// nodeFunc executes one stage against the run record. Stage errors are
// reported for visibility but never stop the walk.
type nodeFunc func(ctx context.Context, st *flow.State) error

// edgeFunc picks the next node after its stage ran.
type edgeFunc func(st *flow.State) string

// Driver walks the node table from Plan to a terminal state.
type Driver struct {
	stages *stage.Stages
	nodes  map[string]nodeFunc
	edges  map[string]edgeFunc

	// Cap overrides StepCap when positive.
	Cap int
}

// New builds the driver's node and edge tables around a stage set.
func New(stages *stage.Stages) *Driver {
	d := &Driver{stages: stages}

	d.nodes = map[string]nodeFunc{
		NodePlan:      stages.Plan,
		NodeDesign:    stages.Design,
		NodeImplement: stages.Implement,
		NodeTester:    stages.TestAuthor,
		NodeRunner:    stages.Run,
		NodeReviewer:  stages.Review,
		NodeFixer:     stages.Fix,
		NodeServices:  stages.ServiceCheck,
		NodePreview:   stages.Preview,
		NodeConductor: func(ctx context.Context, st *flow.State) error {
			ctl := conductor.Decide(st)
			ux.Decision(string(ctl.NextAction), ctl.Rationale)
			if ctl.Checkpoint.Required {
				ux.Checkpoint(ctl.Checkpoint.Reason)
			}
			return nil
		},
	}

	fixed := func(next string) edgeFunc {
		return func(*flow.State) string { return next }
	}
	d.edges = map[string]edgeFunc{
		NodePlan:      fixed(NodeDesign),
		NodeDesign:    fixed(NodeImplement),
		NodeImplement: fixed(NodeConductor),
		NodeConductor: d.afterConductor,
		NodeTester:    fixed(NodeRunner),
		NodeRunner:    d.afterRunner,
		NodeReviewer:  fixed(NodeConductor),
		NodeFixer:     fixed(NodeConductor),
		NodeServices:  fixed(NodeConductor),
		NodePreview:   fixed(nodeEnd),
	}
	return d
}

func (d *Driver) afterConductor(st *flow.State) string {
	switch st.Control.NextAction {
	case flow.ActionPatchCode:
		if conductor.RouteAfterPatchCode(st) == conductor.ActionFix {
			return NodeFixer
		}
		return NodeImplement
	case flow.ActionRunTests:
		return NodeTester
	case flow.ActionStartServices:
		return NodeServices
	case flow.ActionReview:
		return NodeReviewer
	case flow.ActionPreview:
		return NodePreview
	}
	// Unreachable while the conductor honors its enumeration; fail safe
	// toward the terminal.
	return NodePreview
}

func (d *Driver) afterRunner(st *flow.State) string {
	if conductor.RouteAfterRun(st) == conductor.ActionFix {
		return NodeFixer
	}
	return NodeConductor
}

// Run walks the graph from Plan until the terminal node or the step cap.
// The run record is always returned, even on abort.
func (d *Driver) Run(ctx context.Context, st *flow.State) error {
	limit := d.Cap
	if limit <= 0 {
		limit = StepCap
	}

	current := NodePlan
	for steps := 0; current != nodeEnd; steps++ {
		if steps >= limit {
			ux.Abort(fmt.Sprintf("step limit (%d) exceeded at node %q", limit, current))
			return ErrStepLimit
		}

		node, ok := d.nodes[current]
		if !ok {
			return fmt.Errorf("graph: unknown node %q", current)
		}

		ux.StageHeader(current, st.Iteration)
		if err := node(ctx, st); err != nil {
			// Degraded fields are already on the record; keep walking.
			ux.StageFail(current, err.Error())
		}

		current = d.edges[current](st)
	}
	return nil
}
