package config

import (
	"fmt"
	"regexp"
	"strings"
)

var envNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const (
	defaultModel         = "gpt-4o-mini"
	defaultAPIKeyEnv     = "OPENAI_API_KEY"
	defaultBaseURL       = "https://api.openai.com/v1/chat/completions"
	defaultWorkspace     = "."
	defaultMaxIterations = 5
	defaultStepCap       = 30
	defaultPython        = "python3"
	defaultBackendPort   = 8000
	defaultFrontendPort  = 3000
	defaultKeepProjects  = 5
)

// Validate checks the config for errors and sets defaults.
func Validate(cfg *Config) error {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = defaultAPIKeyEnv
	}
	if !envNameRe.MatchString(cfg.APIKeyEnv) {
		return fmt.Errorf("config: 'api-key-env' %q is not a valid environment variable name", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return fmt.Errorf("config: 'base-url' %q must be an http(s) URL", cfg.BaseURL)
	}
	if cfg.Workspace == "" {
		cfg.Workspace = defaultWorkspace
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.MaxIterations < 0 {
		return fmt.Errorf("config: 'max-iterations' must be > 0")
	}
	if cfg.StepCap == 0 {
		cfg.StepCap = defaultStepCap
	}
	if cfg.StepCap < cfg.MaxIterations {
		return fmt.Errorf("config: 'step-cap' (%d) must be at least 'max-iterations' (%d)", cfg.StepCap, cfg.MaxIterations)
	}
	if cfg.Python == "" {
		cfg.Python = defaultPython
	}
	if cfg.Ports.Backend == 0 {
		cfg.Ports.Backend = defaultBackendPort
	}
	if cfg.Ports.Frontend == 0 {
		cfg.Ports.Frontend = defaultFrontendPort
	}
	if cfg.Ports.Backend < 0 || cfg.Ports.Backend > 65535 ||
		cfg.Ports.Frontend < 0 || cfg.Ports.Frontend > 65535 {
		return fmt.Errorf("config: ports must be in 1..65535")
	}
	if cfg.Ports.Backend == cfg.Ports.Frontend {
		return fmt.Errorf("config: backend and frontend ports must differ")
	}
	if cfg.KeepProjects == 0 {
		cfg.KeepProjects = defaultKeepProjects
	}
	if cfg.KeepProjects < 0 {
		return fmt.Errorf("config: 'keep-projects' must be > 0")
	}
	return nil
}
