// Package runner executes model-generated Python in a child process.
//
// Execution is deliberately unsandboxed: the generated code runs with the
// caller's privileges. Callers targeting untrusted deployments must isolate
// at a layer above this package.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single code execution.
const DefaultTimeout = 30 * time.Second

// Save-signal phrases scanned for in child stdout, lowercase.
var saveSignals = []string{"saved as:", "saved to:", "graph saved"}

// ErrNoInterpreter is returned when no Python interpreter can be located.
var ErrNoInterpreter = errors.New("no python interpreter found")

// Result carries output and status of one execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	// SavedFile reports whether child output contained a save-signal phrase.
	// Pure string matching on the child's own output, no protocol.
	SavedFile bool
}

// Runner writes code to a temp file and runs it with a Python interpreter.
type Runner struct {
	// PythonBin overrides interpreter discovery when set.
	PythonBin string
	// Timeout defaults to DefaultTimeout when zero.
	Timeout time.Duration
}

// Interpreter resolves the Python binary to use.
func (r *Runner) Interpreter() (string, error) {
	if r.PythonBin != "" {
		return r.PythonBin, nil
	}
	for _, candidate := range []string{"python3", "python"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", ErrNoInterpreter
}

// Run executes the given code string. The temporary file is removed on every
// return path, including timeout and interrupt. Subprocess failures are
// reported through Result and the returned error; they never panic.
func (r *Runner) Run(ctx context.Context, code string) (Result, error) {
	if strings.TrimSpace(code) == "" {
		return Result{}, fmt.Errorf("code is required")
	}

	python, err := r.Interpreter()
	if err != nil {
		return Result{}, err
	}

	tmp, err := os.CreateTemp("", "smartcli-*.py")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close temp file: %w", err)
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, python, tmpPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
	}
	res.SavedFile = containsSaveSignal(res.Stdout)

	switch {
	case res.TimedOut:
		res.ExitCode = -1
		return res, nil
	case runErr == nil:
		res.ExitCode = 0
		return res, nil
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// Non-zero child exit is reported, not treated as a host failure.
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, fmt.Errorf("run %s: %w", python, runErr)
	}
}

func containsSaveSignal(stdout string) bool {
	lower := strings.ToLower(stdout)
	for _, phrase := range saveSignals {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
