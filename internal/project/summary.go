package project

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary is the final run snapshot written into the project directory when
// a pipeline invocation ends. It is bookkeeping for status display, not a
// resumable record.
type Summary struct {
	RunID           string            `yaml:"run_id"`
	Goal            string            `yaml:"goal"`
	Iterations      int               `yaml:"iterations"`
	ProjectKind     string            `yaml:"project_kind"`
	ReviewStatus    string            `yaml:"review_status,omitempty"`
	TestExitCode    int               `yaml:"test_exit_code"`
	TestsRan        bool              `yaml:"tests_ran"`
	ServicesHealthy bool              `yaml:"services_healthy"`
	FilesCreated    []string          `yaml:"files_created,omitempty"`
	PreviewURLs     map[string]string `yaml:"preview_urls,omitempty"`
	Aborted         bool              `yaml:"aborted,omitempty"`
	AbortReason     string            `yaml:"abort_reason,omitempty"`
	FinishedAt      time.Time         `yaml:"finished_at"`
}

func summaryPath(projectDir string) string {
	return filepath.Join(projectDir, ".conduct", "summary.yaml")
}

// WriteSummary persists the run summary atomically under .conduct/.
func WriteSummary(projectDir string, s *Summary) error {
	if err := os.MkdirAll(filepath.Join(projectDir, ".conduct"), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return writeFileAtomic(summaryPath(projectDir), data, 0644)
}

// LoadSummary reads a previously written run summary.
func LoadSummary(projectDir string) (*Summary, error) {
	data, err := os.ReadFile(summaryPath(projectDir))
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
