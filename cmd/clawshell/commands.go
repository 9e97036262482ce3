package main

import (
	"fmt"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "detect",
		Short:   "Report the host and the installed node, npm and openclaw",
		GroupID: "ops",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), a.svc.DetectSystem(cmd.Context()))
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var line string
	cmd := &cobra.Command{
		Use:   "run [-- args...]",
		Short: "Run openclaw with arguments passed through verbatim",
		Long: `Run openclaw with the given arguments. Put "--" before arguments that
start with a dash. --line splits a single string with shell quoting rules
instead; no shell is run either way.

Examples:
  clawshell run -- status --json
  clawshell run --line 'config set name "my claw"'`,
		GroupID: "ops",
		RunE: func(cmd *cobra.Command, args []string) error {
			if line != "" {
				if len(args) > 0 {
					return fmt.Errorf("--line and positional arguments are mutually exclusive")
				}
				split, err := shlex.Split(line)
				if err != nil {
					return fmt.Errorf("parsing --line: %w", err)
				}
				args = split
			}
			return a.printResult(cmd, a.svc.RunOpenclawCommand(cmd.Context(), args))
		},
	}
	cmd.Flags().StringVar(&line, "line", "", "arguments as one shell-quoted string")
	return cmd
}

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   "Install the latest openclaw globally with npm",
		GroupID: "ops",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printResult(cmd, a.svc.InstallOpenclaw(cmd.Context()))
		},
	}
}

func newOnboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "onboard",
		Short:   "Run openclaw onboarding and install its daemon",
		GroupID: "ops",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printResult(cmd, a.svc.RunOnboard(cmd.Context()))
		},
	}
}

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Short:   "Run openclaw diagnostics",
		GroupID: "ops",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printResult(cmd, a.svc.RunDoctor(cmd.Context()))
		},
	}
}

func newGatewayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Run the openclaw gateway in the foreground",
		Long: `Run the openclaw gateway on the configured port until it exits or is
interrupted. gateway.detach only applies to "clawshell serve", since a
one-shot command would stop a detached gateway on exit.`,
		GroupID: "ops",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg.Gateway.Detach = false
			return a.printResult(cmd, a.svc.StartGateway(cmd.Context()))
		},
	}
}

func newAgentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "agent <message>",
		Short:   "Send one message to the openclaw agent",
		GroupID: "ops",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printResult(cmd, a.svc.SendAgentMessage(cmd.Context(), args[0]))
		},
	}
}

func newScriptCmd(a *app) *cobra.Command {
	var goal string
	cmd := &cobra.Command{
		Use:     "script <path>",
		Short:   "Run a script with node",
		GroupID: "ops",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var g *string
			if cmd.Flags().Changed("goal") {
				g = &goal
			}
			return a.printResult(cmd, a.svc.ExecuteScript(cmd.Context(), args[0], g))
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "task goal passed to the script as --goal")
	return cmd
}
