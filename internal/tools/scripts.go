package tools

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ProjectScripts describes the runnable surface a generated workspace
// exposes, discovered from its build files.
type ProjectScripts struct {
	NPMScripts   map[string]string
	Requirements bool
	PyProject    bool
	Dockerfile   bool
}

// PackageScripts inspects a workspace root for the common build files and
// returns what it finds. Missing files are not an error.
func (t *Toolbox) PackageScripts(root string) (ProjectScripts, error) {
	var ps ProjectScripts

	if b, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg struct {
			Scripts map[string]string `json:"scripts"`
		}
		if err := json.Unmarshal(b, &pkg); err == nil {
			ps.NPMScripts = pkg.Scripts
		}
	}

	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(root, name))
		return err == nil
	}
	ps.Requirements = exists("requirements.txt")
	ps.PyProject = exists("pyproject.toml")
	ps.Dockerfile = exists("Dockerfile")
	return ps, nil
}
