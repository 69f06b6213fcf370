package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFile_MissingIsEmpty(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if fc.HTTP.Addr != nil {
		t.Error("missing file should leave fields nil")
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "lockreact.yaml", `
http:
  addr: ":9000"
  h2c: true
  cors_origins: ["https://a.test"]
  tick_interval: 100ms
log:
  level: debug
  pretty: false
`)
	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg := Default()
	if err := cfg.ApplyFile(fc); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" || !cfg.HTTP.H2C || cfg.HTTP.TickInterval != 100*time.Millisecond {
		t.Errorf("http %+v", cfg.HTTP)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "https://a.test" {
		t.Errorf("cors origins %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Pretty {
		t.Errorf("log %+v", cfg.Log)
	}
	if cfg.HTTP.SessionIdle != Default().HTTP.SessionIdle {
		t.Errorf("unset session_idle changed to %v", cfg.HTTP.SessionIdle)
	}
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeFile(t, "lockreact.toml", `
[ssh]
addr = ":2200"
host_key = "/tmp/key"

[http]
session_idle = "5m"
`)
	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg := Default()
	if err := cfg.ApplyFile(fc); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	if cfg.SSH.Addr != ":2200" || cfg.SSH.HostKey != "/tmp/key" {
		t.Errorf("ssh %+v", cfg.SSH)
	}
	if cfg.HTTP.SessionIdle != 5*time.Minute {
		t.Errorf("session idle %v, want 5m", cfg.HTTP.SessionIdle)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(writeFile(t, "c.json", `{}`)); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadFile(writeFile(t, "c.yaml", "http: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
	fc, err := LoadFile(writeFile(t, "c.yml", "http:\n  tick_interval: soon\n"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg := Default()
	if err := cfg.ApplyFile(fc); err == nil {
		t.Error("expected error for bad duration")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"PORT":                   "7000",
		"LOCKREACT_SSH_ADDR":     ":2300",
		"LOCKREACT_LOG_LEVEL":    "warn",
		"LOCKREACT_LOG_PRETTY":   "false",
		"LOCKREACT_BASE_URL":     "https://play.test",
		"LOCKREACT_SSH_HOST_KEY": "/keys/host",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.HTTP.Addr != ":7000" {
		t.Errorf("addr %q, want :7000", cfg.HTTP.Addr)
	}
	if cfg.SSH.Addr != ":2300" || cfg.SSH.HostKey != "/keys/host" {
		t.Errorf("ssh %+v", cfg.SSH)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Pretty {
		t.Errorf("log %+v", cfg.Log)
	}
	if cfg.HTTP.BaseURL != "https://play.test" {
		t.Errorf("base url %q", cfg.HTTP.BaseURL)
	}

	cfg = Default()
	_ = cfg.ApplyEnv(envMap(map[string]string{"PORT": "7000", "LOCKREACT_ADDR": "127.0.0.1:9"}))
	if cfg.HTTP.Addr != "127.0.0.1:9" {
		t.Errorf("LOCKREACT_ADDR should win over PORT, got %q", cfg.HTTP.Addr)
	}

	cfg = Default()
	if err := cfg.ApplyEnv(envMap(map[string]string{"LOCKREACT_LOG_PRETTY": "maybe"})); err == nil {
		t.Error("expected error for bad bool")
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg := Default()
	cfg.HTTP.TickInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero tick interval")
	}
	cfg = Default()
	cfg.HTTP.SessionIdle = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative idle")
	}
	cfg = Default()
	cfg.HTTP.SessionIdle = time.Nanosecond
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for idle below the minimum")
	}
	cfg.HTTP.SessionIdle = MinSessionIdle
	if err := cfg.Validate(); err != nil {
		t.Errorf("minimum idle rejected: %v", err)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}
