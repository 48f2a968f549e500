package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Outcome is the result of running an external backend process.
type Outcome struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	// Err is set for failures other than a non-zero exit: missing binary,
	// timeout, or a spawn error. A clean non-zero exit leaves Err nil.
	Err error
}

// OK reports whether the process ran and exited zero.
func (o Outcome) OK() bool {
	return o.Err == nil && o.ExitCode == 0
}

// Unavailable reports whether the backend could not run at all (binary not
// found or context expired), as opposed to running and failing.
func (o Outcome) Unavailable() bool {
	if o.Err == nil {
		return false
	}
	return errors.Is(o.Err, exec.ErrNotFound) ||
		errors.Is(o.Err, context.DeadlineExceeded) ||
		errors.Is(o.Err, context.Canceled)
}

// Diagnostic returns the backend's error text: stderr if present, otherwise
// the spawn error.
func (o Outcome) Diagnostic() string {
	if s := strings.TrimSpace(string(o.Stderr)); s != "" {
		return s
	}
	if o.Err != nil {
		return o.Err.Error()
	}
	return ""
}

// Runner runs external commands. Implementations must honor the context
// deadline and never panic on a missing binary.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) Outcome
}

// CommandRunner runs commands via os/exec with a per-call timeout ceiling.
type CommandRunner struct {
	// Timeout bounds each invocation when the caller's context has no
	// earlier deadline. Zero means no ceiling beyond the caller's.
	Timeout time.Duration
}

// Run executes name with args in dir and captures stdout and stderr
// separately (stdout carries parseable backend output, stderr diagnostics).
func (r CommandRunner) Run(ctx context.Context, dir, name string, args ...string) Outcome {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Outcome{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if err == nil {
		return out
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The process ran; prefer reporting the context error when the
		// deadline killed it, so Unavailable() triggers fallback.
		if ctxErr := ctx.Err(); ctxErr != nil {
			out.Err = ctxErr
			return out
		}
		out.ExitCode = exitErr.ExitCode()
		return out
	}

	out.Err = err
	out.ExitCode = -1
	return out
}
