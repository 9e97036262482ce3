package dispatch

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/deixis/clawshell/internal/metrics"
	"github.com/deixis/clawshell/internal/runner"
)

// Diagnostic prefixes for commands that could not be spawned.
const (
	prefixCommand = "Failed to execute command"
	prefixInstall = "Install failed"
	prefixOnboard = "Onboard failed"
	prefixDoctor  = "Doctor check failed"
	prefixGateway = "Gateway start failed"
	prefixAgent   = "Agent message failed"
	prefixScript  = "Script execution failed"
)

// DetectSystem reports the host OS and architecture and probes node, npm
// and openclaw with --version. A tool counts as present when it can be
// spawned; its version is the trimmed stdout whatever the exit status.
func (s *Service) DetectSystem(ctx context.Context) SystemInfo {
	start := time.Now()
	cfg := s.config()

	info := SystemInfo{
		OS:   s.hostOS(),
		Arch: s.hostArch(),
	}
	info.NodeVersion, _ = s.probe(ctx, cfg.NodeBinary())
	info.NPMVersion, _ = s.probe(ctx, cfg.NPMBinary())
	info.OpenclawVersion, info.OpenclawInstalled = s.probe(ctx, cfg.OpenclawBinary())

	s.Logger.Info().
		Str("os", info.OS).
		Str("arch", info.Arch).
		Bool("node", info.NodeVersion != nil).
		Bool("npm", info.NPMVersion != nil).
		Bool("openclaw", info.OpenclawInstalled).
		Msg("system detected")
	metrics.RecordOperation(OpDetectSystem, true, time.Since(start))
	return info
}

func (s *Service) probe(ctx context.Context, program string) (*string, bool) {
	res, err := s.Runner.Run(ctx, []string{program, "--version"})
	if err != nil {
		s.Logger.Debug().Str("program", program).Err(err).Msg("probe failed")
		return nil, false
	}
	v := strings.TrimSpace(lossyString(res.Stdout))
	return &v, true
}

// RunOpenclawCommand runs openclaw with args passed through verbatim.
// An empty args still spawns openclaw with no arguments.
func (s *Service) RunOpenclawCommand(ctx context.Context, args []string) CommandResult {
	argv := append([]string{s.config().OpenclawBinary()}, args...)
	return s.exec(ctx, OpRunOpenclawCommand, prefixCommand, argv)
}

// InstallOpenclaw installs the latest openclaw globally through npm.
func (s *Service) InstallOpenclaw(ctx context.Context) CommandResult {
	cfg := s.config()
	argv := append([]string{cfg.NPMBinary()}, cfg.InstallArgs()...)
	return s.exec(ctx, OpInstallOpenclaw, prefixInstall, argv)
}

// RunOnboard runs openclaw's onboarding flow, installing its daemon.
func (s *Service) RunOnboard(ctx context.Context) CommandResult {
	cfg := s.config()
	argv := append([]string{cfg.OpenclawBinary()}, cfg.OnboardArgs()...)
	return s.exec(ctx, OpRunOnboard, prefixOnboard, argv)
}

// RunDoctor runs openclaw's diagnostics.
func (s *Service) RunDoctor(ctx context.Context) CommandResult {
	cfg := s.config()
	argv := append([]string{cfg.OpenclawBinary()}, cfg.DoctorArgs()...)
	return s.exec(ctx, OpRunDoctor, prefixDoctor, argv)
}

// SendAgentMessage passes message to the openclaw agent as one argument.
func (s *Service) SendAgentMessage(ctx context.Context, message string) CommandResult {
	argv := []string{s.config().OpenclawBinary(), "agent", "--message", message}
	return s.exec(ctx, OpSendAgentMessage, prefixAgent, argv)
}

// ExecuteScript runs a script with node. goal, when non-nil, is appended
// as --goal <goal>. When a script root is configured, paths outside it are
// refused without spawning anything.
func (s *Service) ExecuteScript(ctx context.Context, scriptPath string, goal *string) CommandResult {
	cfg := s.config()

	path := scriptPath
	if root := cfg.Scripts.Root; root != "" {
		resolved, err := runner.ResolvePath(root, scriptPath)
		if err != nil {
			s.Logger.Warn().Str("script", scriptPath).Str("root", root).Err(err).Msg("script refused")
			metrics.RecordOperation(OpExecuteScript, false, 0)
			return failure(prefixScript, "script "+err.Error())
		}
		path = resolved
	}

	argv := []string{cfg.NodeBinary(), path}
	if goal != nil {
		argv = append(argv, "--goal", *goal)
	}
	return s.exec(ctx, OpExecuteScript, prefixScript, argv)
}

func (s *Service) gatewayArgv() []string {
	cfg := s.config()
	return []string{cfg.OpenclawBinary(), "gateway", "--port", strconv.Itoa(cfg.GatewayPort())}
}
