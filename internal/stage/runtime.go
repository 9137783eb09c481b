// Package stage implements the pipeline's nine stage executors. Every stage
// has the uniform shape execute(run record) -> mutated run record: it invokes
// exactly one collaborator, parses the output, and writes its owned fields.
// Collaborator failures never cross a stage boundary; they degrade into
// well-formed record fields so the conductor can always route.
package stage

import (
	"context"
	"time"

	"github.com/jorge-barreto/conduct/internal/flow"
	"github.com/jorge-barreto/conduct/internal/patch"
	"github.com/jorge-barreto/conduct/internal/tools"
)

// Generator is the text-generation collaborator: stage-specific context in,
// full completion text out. One blocking call per stage.
type Generator interface {
	Generate(ctx context.Context, promptCtx map[string]string) (string, error)
}

// Executor runs a self-contained code bundle in isolation.
type Executor interface {
	Execute(ctx context.Context, code string) (tools.ProcResult, error)
}

// ProcessRunner executes a shell command with a hard timeout.
type ProcessRunner interface {
	RunProcess(ctx context.Context, command string, timeout time.Duration, cwd string) (tools.ProcResult, error)
}

// Prober performs HTTP health checks and port probes.
type Prober interface {
	Probe(ctx context.Context, url string, expectedStatus int, timeout time.Duration) (tools.ProbeResult, error)
	PortOpen(host string, port int) bool
}

// Filesystem is plain file access with directory auto-creation on write.
type Filesystem interface {
	ListFiles(dir string) ([]string, error)
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
}

// FixRunner is the bounded auto-fix loop the runner stage invokes before
// executing tests, when the project exposes a runnable entry point.
type FixRunner interface {
	Run(ctx context.Context, projectDir, entryCmd string) *flow.ExecutionResult
}

// Runtime bundles every collaborator handle a stage may need. It is
// constructed once per invocation and threaded explicitly into each stage
// call; there is no ambient global state.
type Runtime struct {
	Gen     Generator
	Exec    Executor
	Proc    ProcessRunner
	Probe   Prober
	FS      Filesystem
	Patches patch.Applier
	Fixer   FixRunner
}
