// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Environment overrides, applied on top of the configured level.
const (
	EnvLogLevel   = "CLAWSHELL_LOG_LEVEL"
	EnvLogJSON    = "CLAWSHELL_LOG_JSON"
	EnvLogNoColor = "CLAWSHELL_LOG_NOCOLOR"
)

// Options controls logger construction.
type Options struct {
	App     string
	Level   string
	JSON    bool
	NoColor bool
	Out     io.Writer // defaults to os.Stderr; stdout carries the MCP stdio transport
	File    io.Writer // optional second sink, always JSON lines
}

// FileOptions controls the rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// RotatingFile returns a size-rotated, compressed log file writer. The
// caller closes it on shutdown.
func RotatingFile(opts FileOptions) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    orInt(opts.MaxSizeMB, 20),
		MaxBackups: orInt(opts.MaxBackups, 5),
		MaxAge:     orInt(opts.MaxAgeDays, 30),
		Compress:   true,
	}
}

// New builds a logger from opts after applying environment overrides and
// installs it as the zerolog global logger.
func New(opts Options) (zerolog.Logger, error) {
	applyEnvOverrides(&opts)

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		}
	}
	if opts.File != nil {
		out = zerolog.MultiLevelWriter(out, opts.File)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("app", opts.App).Logger()
	log.Logger = logger
	return logger, nil
}

// ParseLevel maps a level name to a zerolog level. An empty name is info.
func ParseLevel(raw string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
}

func applyEnvOverrides(opts *Options) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		opts.Level = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogJSON)); ok {
		opts.JSON = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		opts.NoColor = v
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
