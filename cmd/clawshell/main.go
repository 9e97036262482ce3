// Command clawshell runs the openclaw toolchain for a desktop front-end,
// either as an MCP server or as one-shot subcommands.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deixis/clawshell"
	"github.com/deixis/clawshell/internal/config"
	"github.com/deixis/clawshell/internal/dispatch"
	"github.com/deixis/clawshell/internal/history"
	"github.com/deixis/clawshell/internal/logging"
	"github.com/deixis/clawshell/internal/runner"
)

// errCommandFailed makes the process exit 1 after a result reporting
// success=false has already been printed.
var errCommandFailed = errors.New("command failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintln(os.Stderr, "clawshell:", err)
		}
		stop()
		os.Exit(1)
	}
}

// app holds what every subcommand needs once flags have been parsed.
type app struct {
	configPath string
	timeout    time.Duration

	cfg     *config.Config
	logger  zerolog.Logger
	logFile io.Closer
	svc     *dispatch.Service
	failed  bool // a printed result reported success=false
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "clawshell",
		Short: "Run the openclaw toolchain for a desktop front-end",
		Long: `clawshell inspects the host and runs node, npm and openclaw on behalf of a
desktop front-end. "clawshell serve" exposes every operation as an MCP tool;
the other commands run one operation and print its result as JSON.

Environment Variables:
  CLAWSHELL_CONFIG          Config file (default: <user config dir>/clawshell/config.yaml)
  CLAWSHELL_LOG_LEVEL       Log level override (debug, info, warn, error)
  CLAWSHELL_LOG_JSON        Log JSON lines instead of console output
  CLAWSHELL_LOG_NOCOLOR     Disable coloured console logs`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if err := a.close(); err != nil {
				return err
			}
			if a.failed {
				return errCommandFailed
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "override configured timeout (e.g. 5m)")

	root.AddGroup(
		&cobra.Group{ID: "ops", Title: "Operations:"},
		&cobra.Group{ID: "runs", Title: "Run History:"},
	)
	root.AddCommand(
		newServeCmd(a),
		newDetectCmd(a),
		newRunCmd(a),
		newInstallCmd(a),
		newOnboardCmd(a),
		newDoctorCmd(a),
		newGatewayCmd(a),
		newAgentCmd(a),
		newScriptCmd(a),
		newHistoryCmd(a),
		newInspectCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads config and builds the logger, history store and service.
// Any failure here aborts startup.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := logging.Options{App: "clawshell", Level: cfg.LogLevel()}
	if cfg.Log.File != "" {
		f := logging.RotatingFile(logging.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
		opts.File = f
		a.logFile = f
	}
	logger, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	timeout := cfg.Timeout()
	if a.timeout > 0 {
		timeout = a.timeout
	}
	r := &runner.Runner{
		Timeout:   timeout,
		MaxOutput: cfg.MaxOutputBytes(),
	}

	a.cfg = cfg
	a.logger = logger
	a.svc = dispatch.New(cfg, r, store, logger)
	return nil
}

// close releases what setup built. Calling it again is a no-op.
func (a *app) close() error {
	var errs []error
	if a.svc != nil {
		errs = append(errs, a.svc.Close())
		a.svc = nil
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
		a.logFile = nil
	}
	return errors.Join(errs...)
}

func newStore(cfg *config.Config) (history.Store, error) {
	if cfg.History.Disabled {
		return history.NopStore{}, nil
	}
	dir, err := cfg.HistoryDir()
	if err != nil {
		return nil, fmt.Errorf("locating history directory: %w", err)
	}
	disk := history.NewDiskStore(dir)
	disk.MaxRecords = cfg.HistoryMaxRecords()
	return history.NewLRUStore(cfg.HistoryCapacity(), disk), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Printing the version must not depend on a valid config.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), clawshell.Version)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints res and marks the process as failed when res did not
// succeed. The exit status is set after cleanup has run.
func (a *app) printResult(cmd *cobra.Command, res dispatch.CommandResult) error {
	a.failed = !res.Success
	return printJSON(cmd.OutOrStdout(), res)
}
