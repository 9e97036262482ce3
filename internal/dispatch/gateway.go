package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deixis/clawshell/internal/metrics"
	"github.com/deixis/clawshell/internal/runner"
)

// GatewayStatus describes the detached gateway process.
type GatewayStatus struct {
	Detached  bool      `json:"detached"` // gateway.detach is enabled
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
	Stdout    string    `json:"stdout"`
	Stderr    string    `json:"stderr"`
	ExitCode  *int      `json:"exit_code"`
}

// StartGateway runs the openclaw gateway on the configured port. By default
// it blocks until the gateway exits. With gateway.detach it returns once
// the process has started and keeps a handle for GatewayStatus and
// StopGateway.
func (s *Service) StartGateway(ctx context.Context) CommandResult {
	argv := s.gatewayArgv()
	if !s.config().Gateway.Detach || s.Starter == nil {
		return s.exec(ctx, OpStartGateway, prefixGateway, argv)
	}
	return s.startDetached(argv)
}

func (s *Service) startDetached(argv []string) CommandResult {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gateway != nil && s.gateway.Running() {
		pid := s.gateway.Pid()
		s.Logger.Warn().Int("pid", pid).Msg("gateway already running")
		metrics.RecordOperation(OpStartGateway, false, time.Since(start))
		return failure(prefixGateway, fmt.Sprintf("gateway already running (pid %d)", pid))
	}

	p, err := s.Starter.Start(argv)
	if err != nil {
		out := spawnFailure(prefixGateway, err)
		out.RunID = uuid.New().String()
		d := time.Since(start)
		s.Logger.Warn().Str("program", argv[0]).Str("run_id", out.RunID).Err(err).Msg("gateway spawn failed")
		s.record(OpStartGateway, argv, start, d, out, false)
		metrics.RecordSpawnFailure(argv[0])
		metrics.RecordOperation(OpStartGateway, false, d)
		return out
	}

	s.gateway = p
	metrics.SetGatewayRunning(true)
	s.Logger.Info().Int("pid", p.Pid()).Str("run_id", p.RunID).Strs("argv", argv).Msg("gateway started")
	s.watchers.Add(1)
	go s.watchGateway(p)

	metrics.RecordOperation(OpStartGateway, true, time.Since(start))
	return CommandResult{
		Success: true,
		Stdout:  fmt.Sprintf("Gateway started (pid %d)", p.Pid()),
		RunID:   p.RunID,
	}
}

// watchGateway records the gateway's outcome once it exits.
func (s *Service) watchGateway(p *runner.Process) {
	defer s.watchers.Done()
	<-p.Done()

	s.mu.Lock()
	current := s.gateway == p
	s.mu.Unlock()
	if current {
		metrics.SetGatewayRunning(false)
	}

	res := p.Result()
	out := fromResult(res)
	s.Logger.Info().Str("run_id", p.RunID).Int("exit_code", res.ExitCode).
		Dur("duration", res.Duration).Msg("gateway exited")
	s.record(OpStartGateway, p.Argv, p.StartedAt, res.Duration, out, res.Truncated)
}

// GatewayStatus reports the detached gateway, or the last one started.
func (s *Service) GatewayStatus() GatewayStatus {
	st := GatewayStatus{Detached: s.config().Gateway.Detach}

	s.mu.Lock()
	p := s.gateway
	s.mu.Unlock()
	if p == nil {
		return st
	}

	st.PID = p.Pid()
	st.RunID = p.RunID
	st.StartedAt = p.StartedAt
	if res := p.Result(); res != nil {
		out := fromResult(res)
		st.Stdout, st.Stderr, st.ExitCode = out.Stdout, out.Stderr, out.ExitCode
		return st
	}
	st.Running = true
	stdout, stderr := p.Output()
	st.Stdout, st.Stderr = lossyString(stdout), lossyString(stderr)
	return st
}

// StopGateway kills the detached gateway's process group.
func (s *Service) StopGateway() CommandResult {
	start := time.Now()

	s.mu.Lock()
	p := s.gateway
	s.mu.Unlock()

	if p == nil || !p.Running() {
		metrics.RecordOperation(OpStopGateway, false, time.Since(start))
		return failure("Gateway stop failed", "gateway is not running")
	}

	pid := p.Pid()
	if err := p.Stop(); err != nil {
		s.Logger.Error().Int("pid", pid).Err(err).Msg("stopping gateway")
		metrics.RecordOperation(OpStopGateway, false, time.Since(start))
		return failure("Gateway stop failed", err.Error())
	}

	s.Logger.Info().Int("pid", pid).Msg("gateway stopped")
	metrics.RecordOperation(OpStopGateway, true, time.Since(start))
	return CommandResult{
		Success: true,
		Stdout:  fmt.Sprintf("Gateway stopped (pid %d)", pid),
		RunID:   p.RunID,
	}
}
