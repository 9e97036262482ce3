// Package dispatch implements the operations the desktop front-end can
// invoke. Each operation either reads host constants or spawns one external
// program and folds its outcome into a CommandResult. Operations never
// return Go errors: a process that cannot be spawned becomes a failed
// result carrying a diagnostic.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deixis/clawshell/internal/config"
	"github.com/deixis/clawshell/internal/history"
	"github.com/deixis/clawshell/internal/metrics"
	"github.com/deixis/clawshell/internal/runner"
)

// Operation names, shared by the request surface, history and metrics.
const (
	OpDetectSystem       = "detect_system"
	OpRunOpenclawCommand = "run_openclaw_command"
	OpInstallOpenclaw    = "install_openclaw"
	OpRunOnboard         = "run_onboard"
	OpRunDoctor          = "run_doctor"
	OpStartGateway       = "start_gateway"
	OpSendAgentMessage   = "send_agent_message"
	OpExecuteScript      = "execute_script"
	OpStopGateway        = "stop_gateway"
)

// SystemInfo describes the host and the external tools found on it.
type SystemInfo struct {
	OS                string  `json:"os"`
	Arch              string  `json:"arch"`
	NodeVersion       *string `json:"node_version"`
	NPMVersion        *string `json:"npm_version"`
	OpenclawInstalled bool    `json:"openclaw_installed"`
	OpenclawVersion   *string `json:"openclaw_version"`
}

// CommandResult is the outcome of one spawned command.
type CommandResult struct {
	Success  bool   `json:"success"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode *int   `json:"exit_code"`        // nil if the process never exited normally
	RunID    string `json:"run_id,omitempty"` // history key
}

// CommandRunner executes commands synchronously.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) (*runner.Result, error)
}

// ProcessStarter starts commands in the background.
// Implemented by runner.Runner.
type ProcessStarter interface {
	Start(argv []string) (*runner.Process, error)
}

// Service holds the dependencies shared by all operations. It is built
// once at startup and passed by reference to the request surface.
type Service struct {
	Config  *config.Config
	Runner  CommandRunner
	Starter ProcessStarter // nil disables the detached gateway
	Store   history.Store
	Logger  zerolog.Logger

	goos, goarch string

	mu       sync.Mutex
	gateway  *runner.Process
	watchers sync.WaitGroup
}

// New creates a Service backed by r for both foreground and background
// commands.
func New(cfg *config.Config, r *runner.Runner, store history.Store, logger zerolog.Logger) *Service {
	return &Service{
		Config:  cfg,
		Runner:  r,
		Starter: r,
		Store:   store,
		Logger:  logger,
	}
}

// Close stops a detached gateway if one is running and waits until its
// outcome has been recorded.
func (s *Service) Close() error {
	s.mu.Lock()
	p := s.gateway
	s.mu.Unlock()

	var err error
	if p != nil {
		err = p.Stop()
	}
	s.watchers.Wait()
	return err
}

func (s *Service) config() *config.Config {
	if s.Config == nil {
		return &config.Config{}
	}
	return s.Config
}

func (s *Service) store() history.Store {
	if s.Store == nil {
		return history.NopStore{}
	}
	return s.Store
}

func (s *Service) hostOS() string {
	if s.goos != "" {
		return s.goos
	}
	return runtime.GOOS
}

func (s *Service) hostArch() string {
	if s.goarch != "" {
		return s.goarch
	}
	return runtime.GOARCH
}

// exec is the single spawn path behind every subprocess-backed operation.
// failPrefix labels the diagnostic when the process cannot be spawned.
func (s *Service) exec(ctx context.Context, op, failPrefix string, argv []string) CommandResult {
	start := time.Now()
	s.Logger.Debug().Str("op", op).Strs("argv", argv).Msg("spawning")

	res, err := s.Runner.Run(ctx, argv)

	var out CommandResult
	truncated := false
	if err != nil {
		out = spawnFailure(failPrefix, err)
		out.RunID = uuid.New().String()
		metrics.RecordSpawnFailure(argv[0])
		s.Logger.Warn().Str("op", op).Str("program", argv[0]).Err(err).Msg("spawn failed")
	} else {
		out = fromResult(res)
		truncated = res.Truncated
		s.Logger.Info().Str("op", op).Str("run_id", res.RunID).Int("exit_code", res.ExitCode).
			Dur("duration", res.Duration).Msg("command finished")
	}

	d := time.Since(start)
	s.record(op, argv, start, d, out, truncated)
	metrics.RecordOperation(op, out.Success, d)
	return out
}

// record saves the outcome to history. History is best effort: a failure
// is logged and never changes the result handed to the caller.
func (s *Service) record(op string, argv []string, start time.Time, d time.Duration, out CommandResult, truncated bool) {
	rec := &history.Record{
		ID:         out.RunID,
		Operation:  op,
		Argv:       argv,
		StartedAt:  start.UTC(),
		DurationMS: d.Milliseconds(),
		Success:    out.Success,
		Stdout:     out.Stdout,
		Stderr:     out.Stderr,
		ExitCode:   out.ExitCode,
		Truncated:  truncated,
	}
	if err := s.store().Save(rec); err != nil {
		s.Logger.Warn().Str("op", op).Str("run_id", out.RunID).Err(err).Msg("saving run history")
	}
}

// fromResult converts a completed process into a CommandResult.
func fromResult(res *runner.Result) CommandResult {
	out := CommandResult{
		Success: res.Success(),
		Stdout:  lossyString(res.Stdout),
		Stderr:  lossyString(res.Stderr),
		RunID:   res.RunID,
	}
	if res.Exited() {
		code := res.ExitCode
		out.ExitCode = &code
	}
	return out
}

// spawnFailure builds the result for a process that never started.
// The diagnostic carries the OS error, not the runner's wrapping.
func spawnFailure(prefix string, err error) CommandResult {
	cause := err
	var startErr *runner.StartError
	if errors.As(err, &startErr) {
		cause = startErr.Err
	}
	return failure(prefix, cause.Error())
}

func failure(prefix, detail string) CommandResult {
	return CommandResult{
		Success: false,
		Stdout:  "",
		Stderr:  fmt.Sprintf("%s: %s", prefix, detail),
	}
}

// lossyString decodes process output, replacing invalid UTF-8.
func lossyString(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
