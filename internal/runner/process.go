package runner

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// backgroundOutputLimit caps the output kept for a background process.
const backgroundOutputLimit = 64 << 10

// Process is a command started in the background by Start.
// It is safe for concurrent use.
type Process struct {
	RunID     string
	Argv      []string
	StartedAt time.Time

	cmd    *exec.Cmd
	stdout *syncBuffer
	stderr *syncBuffer

	mu      sync.RWMutex
	done    chan struct{}
	result  *Result
	stopped atomic.Bool
}

// Start spawns argv without waiting for it to exit. The process is placed
// in its own process group and is not tied to any request context; it runs
// until it exits or Stop is called. Output is retained up to a fixed cap.
func (r *Runner) Start(argv []string) (*Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("runner: empty argv")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	setProcessGroup(cmd)
	cmd.WaitDelay = pipeWaitDelay

	limit := backgroundOutputLimit
	if r.MaxOutput > 0 && r.MaxOutput < limit {
		limit = r.MaxOutput
	}

	p := &Process{
		RunID:  uuid.New().String(),
		Argv:   append([]string(nil), argv...),
		cmd:    cmd,
		stdout: &syncBuffer{limit: limit},
		stderr: &syncBuffer{limit: limit},
		done:   make(chan struct{}),
	}
	cmd.Stdout = p.stdout
	cmd.Stderr = p.stderr

	p.StartedAt = time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &StartError{Program: argv[0], Err: err}
	}

	go p.wait()

	return p, nil
}

func (p *Process) wait() {
	defer close(p.done)

	exitCode := waitStatus(p.cmd)
	if exitCode != 0 && p.stopped.Load() {
		// Windows reports a killed process as exit status 1.
		exitCode = -1
	}

	stdout, stdoutCut := p.stdout.snapshot()
	stderr, stderrCut := p.stderr.snapshot()

	p.mu.Lock()
	p.result = &Result{
		RunID:     p.RunID,
		Argv:      p.Argv,
		ExitCode:  exitCode,
		Stdout:    stdout,
		Stderr:    stderr,
		Truncated: stdoutCut || stderrCut,
		StartedAt: p.StartedAt,
		Duration:  time.Since(p.StartedAt),
	}
	p.mu.Unlock()
}

// Pid returns the operating system process ID.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed once the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Running reports whether the process has not exited yet.
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Result returns the final result, or nil while the process is running.
func (p *Process) Result() *Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.result
}

// Output returns the output captured so far.
func (p *Process) Output() (stdout, stderr []byte) {
	stdout, _ = p.stdout.snapshot()
	stderr, _ = p.stderr.snapshot()
	return stdout, stderr
}

// Stop kills the process group and waits for the process to exit.
// Stopping an exited process is a no-op.
func (p *Process) Stop() error {
	if !p.Running() {
		return nil
	}
	p.stopped.Store(true)
	if err := killProcessGroup(p.Pid()); err != nil {
		select {
		case <-p.done:
			return nil // exited meanwhile
		default:
		}
		return fmt.Errorf("killing process %d: %w", p.Pid(), err)
	}
	<-p.done
	return nil
}

// syncBuffer is a capped buffer that may be read while the child writes.
type syncBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := b.limit - b.buf.Len()
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *syncBuffer) snapshot() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes()), b.truncated
}
