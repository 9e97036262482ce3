// Package runner spawns external programs and captures their exit status
// and output. No shell is involved: argv reaches the child verbatim.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// pipeWaitDelay bounds how long output is still collected once the child
// has exited or been cancelled.
const pipeWaitDelay = time.Second

// Runner executes commands and captures their output.
// The zero value runs without a timeout or an output cap.
type Runner struct {
	Dir       string        // working directory; empty inherits the caller's
	Timeout   time.Duration // 0 means no timeout
	MaxOutput int           // bytes per stream; 0 means unlimited
}

// Run spawns argv[0] (looked up on PATH) with the remaining elements as
// its arguments and waits for it to exit.
//
// A non-zero exit status is reported in the Result, not as an error. The
// only error is a *StartError, returned when the program cannot be spawned.
func (r *Runner) Run(ctx context.Context, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return nil, errors.New("runner: empty argv")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	res := &Result{
		RunID: uuid.NewString(),
		Argv:  slices.Clone(argv),
	}
	var stdout, stderr bytes.Buffer
	outW := &limitWriter{buf: &stdout, limit: r.MaxOutput}
	errW := &limitWriter{buf: &stderr, limit: r.MaxOutput}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdout, cmd.Stderr = outW, errW
	// Cancellation takes down the whole group, and output is not awaited
	// forever from descendants that outlive the child.
	setProcessGroup(cmd)
	cmd.Cancel = cancelProcessGroup(cmd)
	cmd.WaitDelay = pipeWaitDelay

	res.StartedAt = time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &StartError{Program: argv[0], Err: err}
	}
	res.ExitCode = waitStatus(cmd)
	res.Duration = time.Since(res.StartedAt)
	if res.ExitCode != 0 && ctx.Err() != nil {
		// Killed on cancellation or timeout, whatever status the platform reports.
		res.ExitCode = -1
	}

	res.Stdout, res.Stderr = stdout.Bytes(), stderr.Bytes()
	res.Truncated = outW.cut || errW.cut
	return res, nil
}

// waitStatus waits for cmd and returns its exit code, or -1 when it was
// terminated by a signal. Wait errors other than *exec.ExitError (an
// expired WaitDelay, a failed Cancel) still leave the process state behind.
func waitStatus(cmd *exec.Cmd) int {
	err := cmd.Wait()
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

// ResolvePath resolves p relative to root and validates it is within the
// root boundary. Absolute paths are accepted only when they are inside root.
func ResolvePath(root, p string) (string, error) {
	var path string
	if filepath.IsAbs(p) {
		path = filepath.Clean(p)
	} else {
		path = filepath.Clean(filepath.Join(root, p))
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", p, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside %q", p, root)
	}
	return path, nil
}

// limitWriter keeps the first limit bytes written to buf and drops the
// rest, recording that it did. A limit of 0 disables the cap.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
	cut   bool
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if w.limit <= 0 {
		return w.buf.Write(p)
	}
	keep := min(len(p), w.limit-w.buf.Len())
	if keep < len(p) {
		w.cut = true
	}
	if keep > 0 {
		w.buf.Write(p[:keep])
	}
	// Report everything as consumed so io.Copy does not fail on a short write.
	return len(p), nil
}
