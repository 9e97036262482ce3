// Package config loads and validates the optional clawshell YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "CLAWSHELL_CONFIG"

// Default values for the external tools and their fixed invocations.
const (
	DefaultNode        = "node"
	DefaultNPM         = "npm"
	DefaultOpenclaw    = "openclaw"
	DefaultInstallArgs = "install -g openclaw@latest"
	DefaultOnboardArgs = "onboard --install-daemon"
	DefaultDoctorArgs  = "doctor"
	DefaultGatewayPort = 18789
	DefaultHistoryCap  = 32
	DefaultHistoryKeep = 1000
	DefaultLogLevel    = "info"
)

// Config holds the parsed clawshell configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version        int           `yaml:"version"`
	RawTimeout     string        `yaml:"timeout"`    // e.g. "5m"; empty means no timeout
	RawMaxOutput   int           `yaml:"max_output"` // bytes per stream; 0 means unlimited
	Tools          ToolsConfig   `yaml:"tools"`
	RawInstallArgs string        `yaml:"install_args"`
	RawOnboardArgs string        `yaml:"onboard_args"`
	RawDoctorArgs  string        `yaml:"doctor_args"`
	Gateway        GatewayConfig `yaml:"gateway"`
	Scripts        ScriptsConfig `yaml:"scripts"`
	History        HistoryConfig `yaml:"history"`
	Log            LogConfig     `yaml:"log"`
}

// ToolsConfig names the binaries resolved on PATH.
type ToolsConfig struct {
	Node     string `yaml:"node"`
	NPM      string `yaml:"npm"`
	Openclaw string `yaml:"openclaw"`
}

// GatewayConfig controls start_gateway.
type GatewayConfig struct {
	Port   int  `yaml:"port"`
	Detach bool `yaml:"detach"` // start in the background instead of blocking
}

// ScriptsConfig controls execute_script.
type ScriptsConfig struct {
	Root string `yaml:"root"` // when set, script paths must resolve inside it
}

// HistoryConfig controls the run history store.
type HistoryConfig struct {
	Dir        string `yaml:"dir"`
	Capacity   int    `yaml:"capacity"`    // in-memory entries
	MaxRecords int    `yaml:"max_records"` // records kept on disk
	Disabled   bool   `yaml:"disabled"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`         // optional rotating JSON log file
	MaxSizeMB  int    `yaml:"max_size_mb"`  // rotate after this size
	MaxBackups int    `yaml:"max_backups"`  // rotated files kept
	MaxAgeDays int    `yaml:"max_age_days"` // rotated files pruned after
}

// Timeout returns the configured per-command timeout, or 0 for none.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// MaxOutputBytes returns the configured output cap, or 0 for none.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return 0
}

// NodeBinary returns the script runtime binary.
func (c *Config) NodeBinary() string {
	return orDefault(c.Tools.Node, DefaultNode)
}

// NPMBinary returns the package manager binary.
func (c *Config) NPMBinary() string {
	return orDefault(c.Tools.NPM, DefaultNPM)
}

// OpenclawBinary returns the openclaw CLI binary.
func (c *Config) OpenclawBinary() string {
	return orDefault(c.Tools.Openclaw, DefaultOpenclaw)
}

// InstallArgs returns the npm arguments used by install_openclaw.
func (c *Config) InstallArgs() []string {
	return splitOrDefault(c.RawInstallArgs, DefaultInstallArgs)
}

// OnboardArgs returns the openclaw arguments used by run_onboard.
func (c *Config) OnboardArgs() []string {
	return splitOrDefault(c.RawOnboardArgs, DefaultOnboardArgs)
}

// DoctorArgs returns the openclaw arguments used by run_doctor.
func (c *Config) DoctorArgs() []string {
	return splitOrDefault(c.RawDoctorArgs, DefaultDoctorArgs)
}

// GatewayPort returns the port passed to openclaw gateway.
func (c *Config) GatewayPort() int {
	if c.Gateway.Port > 0 {
		return c.Gateway.Port
	}
	return DefaultGatewayPort
}

// HistoryCapacity returns the in-memory history size.
func (c *Config) HistoryCapacity() int {
	if c.History.Capacity > 0 {
		return c.History.Capacity
	}
	return DefaultHistoryCap
}

// HistoryMaxRecords returns how many run records are kept on disk.
func (c *Config) HistoryMaxRecords() int {
	if c.History.MaxRecords > 0 {
		return c.History.MaxRecords
	}
	return DefaultHistoryKeep
}

// HistoryDir returns the directory run records are written to.
// Defaults to <user cache dir>/clawshell/runs.
func (c *Config) HistoryDir() (string, error) {
	if c.History.Dir != "" {
		return c.History.Dir, nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache directory: %w", err)
	}
	return filepath.Join(cache, "clawshell", "runs"), nil
}

// LogLevel returns the configured log level name.
func (c *Config) LogLevel() string {
	return orDefault(c.Log.Level, DefaultLogLevel)
}

// Validate checks fields that would otherwise fail on first use.
func (c *Config) Validate() error {
	var errs []error
	if c.RawTimeout != "" {
		if _, err := time.ParseDuration(c.RawTimeout); err != nil {
			errs = append(errs, fmt.Errorf("timeout: %w", err))
		}
	}
	if c.Gateway.Port < 0 || c.Gateway.Port > 65535 {
		errs = append(errs, fmt.Errorf("gateway.port: %d out of range", c.Gateway.Port))
	}
	for name, raw := range map[string]string{
		"install_args": c.RawInstallArgs,
		"onboard_args": c.RawOnboardArgs,
		"doctor_args":  c.RawDoctorArgs,
	} {
		if _, err := shlex.Split(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		errs = append(errs, errors.New("log: rotation limits must not be negative"))
	}
	if c.Scripts.Root != "" && !filepath.IsAbs(c.Scripts.Root) {
		errs = append(errs, fmt.Errorf("scripts.root %q must be absolute", c.Scripts.Root))
	}
	return errors.Join(errs...)
}

// DefaultPath returns the config path used when none is given: the
// CLAWSHELL_CONFIG environment variable, else
// <user config dir>/clawshell/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "clawshell", "config.yaml"), nil
}

// Load reads the config file at path. An empty path means DefaultPath.
// If the file does not exist, a default Config is returned.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// splitOrDefault splits raw with shell quoting rules. Validate has already
// rejected bad quoting for loaded files; a failure here falls back to def.
func splitOrDefault(raw, def string) []string {
	if strings.TrimSpace(raw) == "" {
		raw = def
	}
	parts, err := shlex.Split(raw)
	if err != nil {
		parts, _ = shlex.Split(def)
	}
	return parts
}
