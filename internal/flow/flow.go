// Package flow defines the run record shared by every pipeline stage and the
// closed enumerations used for routing decisions.
package flow

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Action is the conductor's next-action enumeration.
type Action string

const (
	ActionPatchCode     Action = "PATCH_CODE"
	ActionRunTests      Action = "RUN_TESTS"
	ActionStartServices Action = "START_SERVICES"
	ActionReview        Action = "REVIEW"
	ActionPreview       Action = "PREVIEW"
)

// Valid reports whether a is a member of the action enumeration.
func (a Action) Valid() bool {
	switch a {
	case ActionPatchCode, ActionRunTests, ActionStartServices, ActionReview, ActionPreview:
		return true
	}
	return false
}

// ReviewStatus is the reviewer's verdict.
type ReviewStatus string

const (
	ReviewUnknown         ReviewStatus = ""
	ReviewApproved        ReviewStatus = "APPROVED"
	ReviewChangesRequired ReviewStatus = "CHANGES_REQUIRED"
)

// ProjectKind classifies the generated project. Set once by the design stage
// and sticky for the remainder of the run.
type ProjectKind string

const (
	KindSimple    ProjectKind = "simple"
	KindFullStack ProjectKind = "full_stack"
)

// Document is a structured key/value artifact produced by a stage (plan,
// design, review, control, snapshot). Values come from parsed YAML.
type Document map[string]any

// GetString returns doc[key] as a string, or "" when absent or mistyped.
func (d Document) GetString(key string) string {
	if d == nil {
		return ""
	}
	s, _ := d[key].(string)
	return s
}

// GetInt returns doc[key] as an int, or 0 when absent or mistyped.
func (d Document) GetInt(key string) int {
	if d == nil {
		return 0
	}
	switch v := d[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Sub returns doc[key] as a nested Document, or nil.
func (d Document) Sub(key string) Document {
	if d == nil {
		return nil
	}
	switch v := d[key].(type) {
	case Document:
		return v
	case map[string]any:
		return Document(v)
	}
	return nil
}

// TestOutput is the runner stage's structured result.
type TestOutput struct {
	ExitCode      int            `yaml:"exit_code"`
	Stdout        string         `yaml:"stdout"`
	Stderr        string         `yaml:"stderr"`
	ServiceChecks []ServiceCheck `yaml:"service_checks,omitempty"`
	// Ran distinguishes "tests ran and exited 0" from "no test run yet".
	Ran bool `yaml:"ran"`
}

// ServiceCheck records one HTTP health probe outcome.
type ServiceCheck struct {
	URL        string `yaml:"url"`
	Success    bool   `yaml:"success"`
	StatusCode int    `yaml:"status_code"`
	Error      string `yaml:"error,omitempty"`
}

// ServicesStatus tracks managed service health for full-stack runs.
type ServicesStatus struct {
	Known    bool                    `yaml:"known"`
	Healthy  bool                    `yaml:"healthy"`
	Services map[string]ServiceEntry `yaml:"services,omitempty"`
	Checks   []ServiceCheck          `yaml:"checks,omitempty"`
}

// ServiceEntry is one service slot (backend/frontend) with its port state.
type ServiceEntry struct {
	Port   int    `yaml:"port"`
	Status string `yaml:"status"` // running, ready_to_start
}

// BuildStatus tracks whether code generation produced files for a
// full-stack project.
type BuildStatus struct {
	CodeGenerated bool `yaml:"code_generated"`
	FilesCreated  bool `yaml:"files_created"`
}

// Checkpoint flags an iteration at which the driver should surface state
// for external approval. Flagged only; not enforced here.
type Checkpoint struct {
	Required bool   `yaml:"required"`
	Reason   string `yaml:"reason,omitempty"`
}

// Control is the conductor's output for one decision.
type Control struct {
	NextAction Action     `yaml:"next_action"`
	Rationale  string     `yaml:"rationale"`
	Checkpoint Checkpoint `yaml:"checkpoint"`
	// ServiceChecks lists the probes the runner should perform, derived
	// from the design document's deployment ports.
	ServiceChecks []ProbeSpec `yaml:"service_checks,omitempty"`
	// PreviewInfo is attached by the preview stage.
	PreviewInfo Document `yaml:"preview_info,omitempty"`
}

// ProbeSpec describes one health probe the runner should perform.
type ProbeSpec struct {
	Port     int    `yaml:"port"`
	Path     string `yaml:"path"`
	Expected int    `yaml:"expected"`
}

// Ports are the configured fallback service ports, consulted whenever a
// design document assigns none of its own under deployment.ports.
type Ports struct {
	Backend  int
	Frontend int
}

// ExecutionError is one classified error observed by the auto-fix loop.
type ExecutionError struct {
	Kind    string `yaml:"kind"` // module_not_found, name_error, syntax_error, other
	Message string `yaml:"message"`
	File    string `yaml:"file,omitempty"`
}

// ExecutionResult is the auto-fix loop's outcome, attached to the test
// output for the conductor and reviewer to observe.
type ExecutionResult struct {
	Success      bool             `yaml:"success"`
	Errors       []ExecutionError `yaml:"errors,omitempty"`
	NeedsFixing  bool             `yaml:"needs_fixing"`
	FixesApplied []string         `yaml:"fixes_applied,omitempty"`
	Attempts     int              `yaml:"attempts"`
	// Advice holds informational solution strings matched from the static
	// lookup table; never auto-applied.
	Advice []string `yaml:"advice,omitempty"`
}

// State is the run record: one instance per pipeline invocation, owned by
// the graph driver and mutated in place by each stage it calls.
type State struct {
	RunID string
	Goal  string

	Plan     Document
	Design   Document
	Review   Document
	Control  Control
	Snapshot Document

	DiffText  string
	TestsText string
	TestGuide string

	TestOutput TestOutput

	Iteration         int
	LastChangeSummary string

	TestsPresent             bool
	ReviewDone               bool
	CodeChangedSinceLastTest bool

	MaxIterations int
	ProjectKind   ProjectKind
	Ports         Ports

	ServicesStatus  ServicesStatus
	BuildStatus     BuildStatus
	ExecutionResult *ExecutionResult

	ProjectDir string
}

// New creates a run record with all-default fields, a fresh run ID, and the
// given budget.
func New(goal, projectDir string, maxIterations int) *State {
	return &State{
		RunID:         ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Goal:          goal,
		ProjectDir:    projectDir,
		MaxIterations: maxIterations,
		ProjectKind:   KindSimple,
		Plan:          Document{},
		Design:        Document{},
		Review:        Document{},
		Snapshot:      Document{},
	}
}

// ReviewStatus returns the review document's status as the closed enum.
func (s *State) ReviewStatus() ReviewStatus {
	switch s.Review.GetString("status") {
	case string(ReviewApproved):
		return ReviewApproved
	case string(ReviewChangesRequired):
		return ReviewChangesRequired
	}
	return ReviewUnknown
}

// TakeSnapshot refreshes the conductor-facing state snapshot. Long artifacts
// are truncated; the snapshot is advisory, never routed on.
func (s *State) TakeSnapshot() {
	s.Snapshot = Document{
		"run_id":           s.RunID,
		"iteration":        s.Iteration,
		"project_type":     string(s.ProjectKind),
		"plan_keys":        len(s.Plan),
		"design_keys":      len(s.Design),
		"last_change":      s.LastChangeSummary,
		"tests_present":    s.TestsPresent,
		"review_done":      s.ReviewDone,
		"code_changed":     s.CodeChangedSinceLastTest,
		"test_exit_code":   s.TestOutput.ExitCode,
		"services_healthy": s.ServicesStatus.Healthy,
		"build_code_ready": s.BuildStatus.CodeGenerated,
	}
}
