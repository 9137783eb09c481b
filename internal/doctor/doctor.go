// Package doctor runs deterministic environment checks so a broken setup is
// caught before a run burns its generation budget.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jorge-barreto/conduct/internal/config"
	"github.com/jorge-barreto/conduct/internal/ux"
)

// Check is one environment probe result.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// RunChecks probes the environment the pipeline depends on. Checks never
// error; a broken environment is a failed check.
func RunChecks(cfg *config.Config) []Check {
	return []Check{
		pythonCheck(cfg.Python),
		apiKeyCheck(cfg.APIKeyEnv),
		workspaceCheck(cfg.Workspace),
		gitCheck(),
	}
}

// Render prints the check table and reports whether all checks passed.
func Render(checks []Check) bool {
	ok := true
	fmt.Printf("\n%s══ Doctor ══%s\n\n", ux.Bold, ux.Reset)
	for _, c := range checks {
		mark, color := "✓", ux.Green
		if !c.OK {
			mark, color = "✗", ux.Red
			ok = false
		}
		fmt.Printf("  %s%s%s %-24s %s%s%s\n", color, mark, ux.Reset, c.Name, ux.Dim, c.Detail, ux.Reset)
	}
	fmt.Println()
	return ok
}

func pythonCheck(python string) Check {
	path, err := exec.LookPath(python)
	if err != nil {
		return Check{Name: "python interpreter", Detail: python + " not on PATH"}
	}
	return Check{Name: "python interpreter", OK: true, Detail: path}
}

func apiKeyCheck(env string) Check {
	if os.Getenv(env) == "" {
		return Check{Name: "generation API key", Detail: env + " is not set"}
	}
	return Check{Name: "generation API key", OK: true, Detail: env + " is set"}
}

func workspaceCheck(workspace string) Check {
	probe := filepath.Join(workspace, ".conduct-doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return Check{Name: "workspace writable", Detail: err.Error()}
	}
	os.Remove(probe)
	return Check{Name: "workspace writable", OK: true, Detail: workspace}
}

func gitCheck() Check {
	path, err := exec.LookPath("git")
	if err != nil {
		return Check{Name: "git (patch fallback)", Detail: "git not on PATH; unified diffs will be skipped"}
	}
	return Check{Name: "git (patch fallback)", OK: true, Detail: path}
}
