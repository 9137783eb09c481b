// Package tools implements the external collaborators the pipeline consumes:
// process execution, isolated code execution, HTTP probing, port checks,
// filesystem access, and package-script discovery.
package tools

import "time"

// ProcResult is the outcome of a process or code-bundle execution.
type ProcResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ProbeResult is the outcome of an HTTP health check.
type ProbeResult struct {
	StatusCode int
	Success    bool
	Elapsed    time.Duration
}

// Toolbox is the default collaborator implementation. The zero value is
// usable; Python names the interpreter for code-bundle execution.
type Toolbox struct {
	// Python is the interpreter used by Execute. Defaults to "python3".
	Python string
}

func (t *Toolbox) python() string {
	if t.Python != "" {
		return t.Python
	}
	return "python3"
}
