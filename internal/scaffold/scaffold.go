// Package scaffold creates a starter configuration for a new workspace.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/conduct/internal/ux"
)

var configTemplate = `# conduct run configuration
model: gpt-4o-mini
api-key-env: OPENAI_API_KEY

# Root under which generated_projects/ is created.
workspace: .

# Conductor iteration budget per run; the step cap bounds total graph
# steps and aborts runaway runs.
max-iterations: 5
step-cap: 30

python: python3

# Default service ports for full-stack projects.
ports:
  backend: 8000
  frontend: 3000

# How many project directories 'conduct projects cleanup' keeps.
keep-projects: 5
`

// Init writes a starter conduct.yaml into targetDir.
func Init(targetDir string) error {
	configPath := filepath.Join(targetDir, "conduct.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("conduct.yaml already exists in %s", targetDir)
	}
	if err := os.WriteFile(configPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing conduct.yaml: %w", err)
	}

	fmt.Printf("\n%s%s✓ Initialized conduct.yaml%s\n\n", ux.Bold, ux.Green, ux.Reset)
	fmt.Printf("  Next steps:\n")
	fmt.Printf("    1. Export your generation API key (%sOPENAI_API_KEY%s)\n", ux.Cyan, ux.Reset)
	fmt.Printf("    2. Run %sconduct doctor%s to check the environment\n", ux.Cyan, ux.Reset)
	fmt.Printf("    3. Run %sconduct run \"<goal>\"%s to start a pipeline\n\n", ux.Cyan, ux.Reset)
	return nil
}
