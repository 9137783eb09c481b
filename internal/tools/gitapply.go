package tools

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/jorge-barreto/conduct/internal/patch"
)

// GitApplier applies unified diffs with git-apply inside a workspace. It is
// the fallback for model output that carries no file markers.
type GitApplier struct {
	Root string
}

// ApplyPatch pipes diffText through `git apply` and reports which files it
// touched. A diff git rejects yields an error; the caller treats that as a
// skipped patch, not a fatal condition.
func (g *GitApplier) ApplyPatch(diffText string) (patch.Result, error) {
	files := diffTargets(diffText)

	cmd := exec.Command("git", "apply", "--whitespace=nowarn", "-")
	cmd.Dir = g.Root
	cmd.Stdin = strings.NewReader(diffText)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return patch.Result{}, &ApplyError{Msg: msg}
		}
		return patch.Result{}, err
	}
	return patch.Result{FilesWritten: files, OK: len(files) > 0}, nil
}

// ApplyError carries git-apply's own diagnostic.
type ApplyError struct{ Msg string }

func (e *ApplyError) Error() string { return "git apply: " + e.Msg }

func diffTargets(diffText string) []string {
	var files []string
	seen := map[string]bool{}
	for _, line := range strings.Split(diffText, "\n") {
		if rest, ok := strings.CutPrefix(line, "+++ "); ok {
			rest = strings.TrimSpace(rest)
			rest = strings.TrimPrefix(rest, "b/")
			if rest == "" || rest == "/dev/null" || seen[rest] {
				continue
			}
			seen[rest] = true
			files = append(files, rest)
		}
	}
	return files
}
