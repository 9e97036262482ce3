package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != 0 {
		t.Errorf("expected default config, got Version = %d", cfg.Version)
	}
	if got := cfg.OpenclawBinary(); got != "openclaw" {
		t.Errorf("OpenclawBinary() = %q, want openclaw", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := &Config{}
	if got, want := cfg.InstallArgs(), []string{"install", "-g", "openclaw@latest"}; !reflect.DeepEqual(got, want) {
		t.Errorf("InstallArgs() = %v, want %v", got, want)
	}
	if got, want := cfg.OnboardArgs(), []string{"onboard", "--install-daemon"}; !reflect.DeepEqual(got, want) {
		t.Errorf("OnboardArgs() = %v, want %v", got, want)
	}
	if got, want := cfg.DoctorArgs(), []string{"doctor"}; !reflect.DeepEqual(got, want) {
		t.Errorf("DoctorArgs() = %v, want %v", got, want)
	}
	if cfg.GatewayPort() != 18789 {
		t.Errorf("GatewayPort() = %d, want 18789", cfg.GatewayPort())
	}
	if cfg.Timeout() != 0 {
		t.Errorf("Timeout() = %v, want 0", cfg.Timeout())
	}
	if cfg.MaxOutputBytes() != 0 {
		t.Errorf("MaxOutputBytes() = %d, want 0", cfg.MaxOutputBytes())
	}
	if cfg.HistoryCapacity() != DefaultHistoryCap {
		t.Errorf("HistoryCapacity() = %d, want %d", cfg.HistoryCapacity(), DefaultHistoryCap)
	}
	if cfg.HistoryMaxRecords() != DefaultHistoryKeep {
		t.Errorf("HistoryMaxRecords() = %d, want %d", cfg.HistoryMaxRecords(), DefaultHistoryKeep)
	}
	if cfg.LogLevel() != "info" {
		t.Errorf("LogLevel() = %q, want info", cfg.LogLevel())
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `version: 1
timeout: 30s
max_output: 2048
tools:
  node: /opt/node/bin/node
  openclaw: claw
install_args: "install -g 'openclaw@1.2.3'"
gateway:
  port: 9000
  detach: true
history:
  capacity: 4
  max_records: 50
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Timeout())
	}
	if cfg.MaxOutputBytes() != 2048 {
		t.Errorf("MaxOutputBytes() = %d, want 2048", cfg.MaxOutputBytes())
	}
	if cfg.NodeBinary() != "/opt/node/bin/node" {
		t.Errorf("NodeBinary() = %q", cfg.NodeBinary())
	}
	if cfg.NPMBinary() != "npm" {
		t.Errorf("NPMBinary() = %q, want npm", cfg.NPMBinary())
	}
	if cfg.OpenclawBinary() != "claw" {
		t.Errorf("OpenclawBinary() = %q, want claw", cfg.OpenclawBinary())
	}
	if got, want := cfg.InstallArgs(), []string{"install", "-g", "openclaw@1.2.3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("InstallArgs() = %v, want %v", got, want)
	}
	if cfg.GatewayPort() != 9000 || !cfg.Gateway.Detach {
		t.Errorf("Gateway = %+v", cfg.Gateway)
	}
	if cfg.HistoryCapacity() != 4 {
		t.Errorf("HistoryCapacity() = %d, want 4", cfg.HistoryCapacity())
	}
	if cfg.HistoryMaxRecords() != 50 {
		t.Errorf("HistoryMaxRecords() = %d, want 50", cfg.HistoryMaxRecords())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %q, want debug", cfg.LogLevel())
	}
}

func TestLoad_FromEnv(t *testing.T) {
	path := writeConfig(t, "version: 3\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != 3 {
		t.Errorf("Version = %d, want 3", cfg.Version)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "tools: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_InvalidFields(t *testing.T) {
	path := writeConfig(t, `timeout: soon
doctor_args: "doctor 'unterminated"
gateway:
  port: 70000
scripts:
  root: relative/dir
log:
  max_backups: -1
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"timeout", "doctor_args", "gateway.port", "scripts.root", "rotation limits"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want to mention %s", err, want)
		}
	}
}

func TestHistoryDir_Configured(t *testing.T) {
	cfg := &Config{History: HistoryConfig{Dir: "/var/lib/clawshell"}}
	dir, err := cfg.HistoryDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/var/lib/clawshell" {
		t.Errorf("HistoryDir() = %q", dir)
	}
}
