// Package runner executes untrusted Python source in a subprocess with a hard
// wall-clock timeout. The isolation boundary is deliberately weak: a fresh
// process with its working directory pinned to a scratch location, killed on
// timeout. There is no filesystem, network, or memory confinement.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// SetupErrPrefix distinguishes infrastructure failures from the submitted
// program's own stderr.
const SetupErrPrefix = "Execution error: "

// Result describes one completed execution. Exactly one of the outcome shapes
// holds: TimedOut set (output discarded), SetupErr set (runner could not
// stage or spawn), or captured stdout/stderr with ExitNonzero reflecting the
// exit code.
type Result struct {
	Stdout      string
	Stderr      string
	TimedOut    bool
	ExitNonzero bool
	SetupErr    string
}

type Runner struct {
	bin        string
	scratchDir string
	timeout    time.Duration
	sem        chan struct{} // Concurrency limiter
}

// New builds a Runner that stages code under scratchDir and executes it with
// bin. At most maxConcurrent executions run at once; further calls block on a
// slot so one stuck submission cannot starve unrelated requests.
func New(bin, scratchDir string, timeout time.Duration, maxConcurrent int) (*Runner, error) {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if err := os.MkdirAll(scratchDir, 0o700); err != nil {
		return nil, err
	}
	return &Runner{
		bin:        bin,
		scratchDir: scratchDir,
		timeout:    timeout,
		sem:        make(chan struct{}, maxConcurrent),
	}, nil
}

func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run executes source and always returns a Result; it never panics or
// returns a Go error. Infrastructure failures come back in Result.SetupErr.
func (r *Runner) Run(ctx context.Context, source string) Result {
	select {
	case r.sem <- struct{}{}:
		defer func() { <-r.sem }()
	case <-ctx.Done():
		return setupFailure(ctx.Err())
	}

	// Per-invocation unique name so concurrent runs sharing the scratch
	// directory never collide.
	path := filepath.Join(r.scratchDir, uuid.NewString()+".py")
	if err := os.WriteFile(path, []byte(source), 0o600); err != nil {
		return setupFailure(err)
	}
	defer os.Remove(path)

	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(execCtx, r.bin, path)
	cmd.Dir = r.scratchDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Run the child in its own process group and kill the whole group on
	// timeout, so grandchildren spawned by the submission are reclaimed too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 2 * time.Second

	if err := cmd.Start(); err != nil {
		return setupFailure(err)
	}

	err := cmd.Wait()

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		// Partial output is discarded on timeout.
		return Result{TimedOut: true}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{
				Stdout:      stdout.String(),
				Stderr:      stderr.String(),
				ExitNonzero: true,
			}
		}
		return setupFailure(err)
	}

	return Result{Stdout: stdout.String(), Stderr: stderr.String()}
}

func setupFailure(err error) Result {
	return Result{SetupErr: SetupErrPrefix + err.Error()}
}
