package tools

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// RunProcess executes a shell command with a hard timeout. A timeout or
// non-zero exit is a failure result, not an error; errors are reserved for
// the command being unrunnable at all.
func (t *Toolbox) RunProcess(ctx context.Context, command string, timeout time.Duration, cwd string) (ProcResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Dir = cwd
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res := ProcResult{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctx.Err() != nil {
		res.ExitCode = 124
		if res.Stderr == "" {
			res.Stderr = "process timed out"
		}
		return res, nil
	}

	code, err := exitCode(runErr)
	if err != nil {
		return res, err
	}
	res.ExitCode = code
	return res, nil
}

// Execute writes a code bundle to a temporary file and runs it with the
// configured interpreter, capturing the outcome. No process identity
// persists across calls.
func (t *Toolbox) Execute(ctx context.Context, code string) (ProcResult, error) {
	dir, err := os.MkdirTemp("", "conduct-exec-")
	if err != nil {
		return ProcResult{}, err
	}
	defer os.RemoveAll(dir)

	bundle := filepath.Join(dir, "bundle.py")
	if err := os.WriteFile(bundle, []byte(code), 0644); err != nil {
		return ProcResult{}, err
	}
	return t.RunProcess(ctx, t.python()+" "+bundle, 60*time.Second, dir)
}

// exitCode extracts an exit code from a command error. Returns (code, nil)
// for ExitError, (0, err) for other errors, (0, nil) for nil.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}
