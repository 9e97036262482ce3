package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) = nil error, want error")
	}
}

func TestNew_JSON(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogJSON, "")

	var buf bytes.Buffer
	logger, err := New(Options{App: "clawshell", Level: "debug", JSON: true, Out: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug().Str("op", "run_doctor").Msg("spawning")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", buf.String())
	}
	if entry["app"] != "clawshell" || entry["op"] != "run_doctor" || entry["message"] != "spawning" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNew_EnvOverridesLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogJSON, "1")

	var buf bytes.Buffer
	logger, err := New(Options{App: "clawshell", Level: "debug", Out: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at error level: %q", buf.String())
	}
	logger.Error().Msg("shown")
	if !bytes.Contains(buf.Bytes(), []byte(`"message":"shown"`)) {
		t.Errorf("expected JSON error line, got %q", buf.String())
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	if _, err := New(Options{Level: "verbose-ish"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNew_FileSink(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogJSON, "")

	path := filepath.Join(t.TempDir(), "logs", "clawshell.log")
	file := RotatingFile(FileOptions{Path: path})
	defer file.Close()

	var console bytes.Buffer
	logger, err := New(Options{App: "clawshell", NoColor: true, Out: &console, File: file})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info().Str("op", "run_doctor").Msg("command finished")

	if !strings.Contains(console.String(), "command finished") {
		t.Errorf("console output = %q", console.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log file line is not JSON: %q", data)
	}
	if entry["op"] != "run_doctor" {
		t.Errorf("entry = %v", entry)
	}
}

func TestRotatingFile_Defaults(t *testing.T) {
	f := RotatingFile(FileOptions{Path: "x.log", MaxBackups: 2})
	if f.MaxSize != 20 || f.MaxBackups != 2 || f.MaxAge != 30 || !f.Compress {
		t.Errorf("unexpected settings %+v", f)
	}
}
