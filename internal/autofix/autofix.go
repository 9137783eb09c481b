// Package autofix is the bounded execute-diagnose-remediate loop the runner
// stage invokes before final test execution. It fixes only what it can fix
// deterministically; everything else is surfaced for the fix stage.
package autofix

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/jorge-barreto/conduct/internal/flow"
	"github.com/jorge-barreto/conduct/internal/tools"
	"github.com/jorge-barreto/conduct/internal/ux"
)

const (
	// MaxAttempts caps entry-point executions per runner invocation.
	MaxAttempts = 3
	// ExecTimeout bounds each entry-point execution.
	ExecTimeout = 30 * time.Second
)

// knownPins maps module names to the version pins written into
// requirements.txt. Unknown modules are appended unpinned.
var knownPins = map[string]string{
	"fastapi":  "fastapi==0.104.1",
	"uvicorn":  "uvicorn==0.24.0",
	"requests": "requests==2.31.0",
	"pydantic": "pydantic==2.5.0",
	"pytest":   "pytest==7.4.3",
}

// solutions is the static advice table. Matches are recorded on the
// execution result, never auto-applied.
var solutions = []struct{ signature, advice string }{
	{"modulenotfounderror", "Install the missing package with pip, or add it to requirements.txt"},
	{"syntaxerror", "Check for unclosed brackets, missing colons, or bad indentation near the reported line"},
	{"importerror", "Verify the package is installed and the module path is spelled correctly"},
	{"connectionerror", "Confirm the target service is running and the port is not already bound"},
	{"permission denied", "Check file permissions, or avoid writing outside the project directory"},
}

var (
	moduleNotFoundRe = regexp.MustCompile(`(?:ModuleNotFoundError|ImportError): No module named '?([\w.]+)'?`)
	nameErrorRe      = regexp.MustCompile(`NameError: name '(os|json)' is not defined`)
)

// ProcessRunner executes the project entry point.
type ProcessRunner interface {
	RunProcess(ctx context.Context, command string, timeout time.Duration, cwd string) (tools.ProcResult, error)
}

// Filesystem gives the loop access to the generated sources it may patch.
type Filesystem interface {
	ListFiles(dir string) ([]string, error)
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
}

// Loop holds the collaborators one auto-fix run needs.
type Loop struct {
	Proc ProcessRunner
	FS   Filesystem
}

// Run executes entryCmd in projectDir up to MaxAttempts times, applying
// deterministic fixes between attempts. It stops early on success, on an
// attempt that applies no fix, or when the same failure fingerprint repeats.
func (l *Loop) Run(ctx context.Context, projectDir, entryCmd string) *flow.ExecutionResult {
	res := &flow.ExecutionResult{}
	var prevFP [32]byte

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		res.Attempts = attempt
		out, err := l.Proc.RunProcess(ctx, entryCmd, ExecTimeout, projectDir)
		if err != nil {
			res.Errors = append(res.Errors, flow.ExecutionError{Kind: "other", Message: err.Error()})
			res.NeedsFixing = true
			return res
		}
		if out.ExitCode == 0 {
			res.Success = true
			return res
		}

		execErr := classify(out.Stderr)
		res.Errors = append(res.Errors, execErr)
		res.Advice = appendAdvice(res.Advice, out.Stderr)

		fp := blake3.Sum256([]byte(out.Stderr))
		if fp == prevFP {
			// The last fix changed nothing observable.
			res.NeedsFixing = true
			return res
		}
		prevFP = fp

		fixed, desc := l.remediate(projectDir, execErr)
		if !fixed {
			res.NeedsFixing = true
			return res
		}
		res.FixesApplied = append(res.FixesApplied, desc)
		ux.FixAttempt(attempt, MaxAttempts, desc)
	}

	res.NeedsFixing = true
	return res
}

func classify(stderr string) flow.ExecutionError {
	if m := moduleNotFoundRe.FindStringSubmatch(stderr); m != nil {
		return flow.ExecutionError{Kind: "module_not_found", Message: m[0], File: m[1]}
	}
	if m := nameErrorRe.FindStringSubmatch(stderr); m != nil {
		return flow.ExecutionError{Kind: "name_error", Message: m[0], File: m[1]}
	}
	if strings.Contains(stderr, "SyntaxError") {
		return flow.ExecutionError{Kind: "syntax_error", Message: lastLine(stderr)}
	}
	return flow.ExecutionError{Kind: "other", Message: lastLine(stderr)}
}

// remediate applies the one deterministic fix available for the error, if
// any. Returns whether a fix was applied and a short description of it.
func (l *Loop) remediate(projectDir string, execErr flow.ExecutionError) (bool, string) {
	switch execErr.Kind {
	case "module_not_found":
		return l.pinRequirement(projectDir, execErr.File)
	case "name_error":
		return l.prependImport(projectDir, execErr.File)
	}
	return false, ""
}

// pinRequirement appends the module's pin (or its bare name) to
// requirements.txt unless it is already listed.
func (l *Loop) pinRequirement(projectDir, module string) (bool, string) {
	base := strings.Split(module, ".")[0]
	line, ok := knownPins[base]
	if !ok {
		line = base
	}

	reqPath := filepath.Join(projectDir, "requirements.txt")
	existing, _ := l.FS.ReadFile(reqPath)
	for _, have := range strings.Split(existing, "\n") {
		if strings.Split(strings.TrimSpace(have), "==")[0] == base {
			return false, ""
		}
	}

	updated := existing
	if updated != "" && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	updated += line + "\n"
	if err := l.FS.WriteFile(reqPath, updated); err != nil {
		return false, ""
	}
	return true, fmt.Sprintf("pinned %s in requirements.txt", line)
}

// prependImport adds the missing stdlib import to the first generated source
// file that uses the name without importing it.
func (l *Loop) prependImport(projectDir, name string) (bool, string) {
	files, err := l.FS.ListFiles(projectDir)
	if err != nil {
		return false, ""
	}
	importLine := "import " + name
	for _, rel := range files {
		if !strings.HasSuffix(rel, ".py") {
			continue
		}
		path := filepath.Join(projectDir, rel)
		src, err := l.FS.ReadFile(path)
		if err != nil {
			continue
		}
		if !strings.Contains(src, name+".") || containsImport(src, importLine) {
			continue
		}
		if err := l.FS.WriteFile(path, importLine+"\n"+src); err != nil {
			return false, ""
		}
		return true, fmt.Sprintf("added %q to %s", importLine, rel)
	}
	return false, ""
}

func containsImport(src, importLine string) bool {
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) == importLine {
			return true
		}
	}
	return false
}

func appendAdvice(advice []string, stderr string) []string {
	lower := strings.ToLower(stderr)
	for _, s := range solutions {
		if strings.Contains(lower, s.signature) && !contains(advice, s.advice) {
			advice = append(advice, s.advice)
		}
	}
	return advice
}

func contains(list []string, v string) bool {
	for _, have := range list {
		if have == v {
			return true
		}
	}
	return false
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	return lines[len(lines)-1]
}
