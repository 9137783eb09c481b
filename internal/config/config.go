package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Ports overrides the default service ports probed for full-stack projects
// when the design document does not assign its own.
type Ports struct {
	Backend  int `yaml:"backend"`
	Frontend int `yaml:"frontend"`
}

// Config is the run configuration loaded from conduct.yaml.
type Config struct {
	// Model names the chat-completions model used for every stage.
	Model string `yaml:"model"`
	// APIKeyEnv is the environment variable holding the generation API key.
	APIKeyEnv string `yaml:"api-key-env"`
	// BaseURL points at the chat-completions endpoint.
	BaseURL string `yaml:"base-url"`
	// Workspace is the root under which project directories are created.
	Workspace string `yaml:"workspace"`
	// MaxIterations is the conductor's iteration budget per run.
	MaxIterations int `yaml:"max-iterations"`
	// StepCap bounds total graph node visits; exceeding it aborts the run.
	StepCap int `yaml:"step-cap"`
	// Python names the interpreter used for test and entry-point execution.
	Python string `yaml:"python"`
	// Ports are the default full-stack service ports.
	Ports Ports `yaml:"ports"`
	// KeepProjects is how many project directories cleanup retains.
	KeepProjects int `yaml:"keep-projects"`
}

// Load reads a YAML config file and returns a validated Config. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
