// Package config resolves settings from defaults, an optional file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the resolved application configuration.
type Config struct {
	HTTP HTTPConfig
	SSH  SSHConfig
	Log  LogConfig
}

type HTTPConfig struct {
	Addr         string
	H2C          bool
	CORSOrigins  []string
	BaseURL      string
	TickInterval time.Duration
	SessionIdle  time.Duration
}

type SSHConfig struct {
	Addr    string
	HostKey string
}

type LogConfig struct {
	Level  string
	Pretty bool
	// File receives logs in terminal play mode. Empty discards them there.
	File string
}

// MinSessionIdle is the shortest accepted http.session_idle.
const MinSessionIdle = time.Second

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:         ":8080",
			TickInterval: 250 * time.Millisecond,
			SessionIdle:  30 * time.Minute,
		},
		SSH: SSHConfig{
			Addr:    ":2222",
			HostKey: filepath.Join(".ssh", "lockreact_ed25519"),
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// FileConfig mirrors the config file. Nil fields leave the current value alone.
type FileConfig struct {
	HTTP struct {
		Addr         *string  `yaml:"addr" toml:"addr"`
		H2C          *bool    `yaml:"h2c" toml:"h2c"`
		CORSOrigins  []string `yaml:"cors_origins" toml:"cors_origins"`
		BaseURL      *string  `yaml:"base_url" toml:"base_url"`
		TickInterval *string  `yaml:"tick_interval" toml:"tick_interval"`
		SessionIdle  *string  `yaml:"session_idle" toml:"session_idle"`
	} `yaml:"http" toml:"http"`
	SSH struct {
		Addr    *string `yaml:"addr" toml:"addr"`
		HostKey *string `yaml:"host_key" toml:"host_key"`
	} `yaml:"ssh" toml:"ssh"`
	Log struct {
		Level  *string `yaml:"level" toml:"level"`
		Pretty *bool   `yaml:"pretty" toml:"pretty"`
		File   *string `yaml:"file" toml:"file"`
	} `yaml:"log" toml:"log"`
}

// LoadFile reads a YAML or TOML config chosen by extension. A missing file is
// not an error.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("failed to read config file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fc, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return fc, fmt.Errorf("failed to decode config: %w", err)
		}
	default:
		return fc, fmt.Errorf("unsupported config format %q", ext)
	}
	return fc, nil
}

// ApplyFile overlays the values present in fc.
func (c *Config) ApplyFile(fc FileConfig) error {
	setString(&c.HTTP.Addr, fc.HTTP.Addr)
	setBool(&c.HTTP.H2C, fc.HTTP.H2C)
	if fc.HTTP.CORSOrigins != nil {
		c.HTTP.CORSOrigins = fc.HTTP.CORSOrigins
	}
	setString(&c.HTTP.BaseURL, fc.HTTP.BaseURL)
	if err := setDuration(&c.HTTP.TickInterval, "http.tick_interval", fc.HTTP.TickInterval); err != nil {
		return err
	}
	if err := setDuration(&c.HTTP.SessionIdle, "http.session_idle", fc.HTTP.SessionIdle); err != nil {
		return err
	}
	setString(&c.SSH.Addr, fc.SSH.Addr)
	setString(&c.SSH.HostKey, fc.SSH.HostKey)
	setString(&c.Log.Level, fc.Log.Level)
	setBool(&c.Log.Pretty, fc.Log.Pretty)
	setString(&c.Log.File, fc.Log.File)
	return nil
}

// ApplyEnv overlays LOCKREACT_* variables. PORT is honoured when
// LOCKREACT_ADDR is unset.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		c.HTTP.Addr = ":" + port
	}
	c.HTTP.Addr = getEnv(getenv, "LOCKREACT_ADDR", c.HTTP.Addr)
	c.HTTP.BaseURL = getEnv(getenv, "LOCKREACT_BASE_URL", c.HTTP.BaseURL)
	c.SSH.Addr = getEnv(getenv, "LOCKREACT_SSH_ADDR", c.SSH.Addr)
	c.SSH.HostKey = getEnv(getenv, "LOCKREACT_SSH_HOST_KEY", c.SSH.HostKey)
	c.Log.Level = getEnv(getenv, "LOCKREACT_LOG_LEVEL", c.Log.Level)
	if v := strings.TrimSpace(getenv("LOCKREACT_LOG_PRETTY")); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOCKREACT_LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = pretty
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr must not be empty")
	}
	if c.HTTP.TickInterval <= 0 {
		return fmt.Errorf("http.tick_interval must be > 0")
	}
	if c.HTTP.SessionIdle < MinSessionIdle {
		return fmt.Errorf("http.session_idle must be at least %s", MinSessionIdle)
	}
	if strings.TrimSpace(c.SSH.Addr) == "" {
		return fmt.Errorf("ssh.addr must not be empty")
	}
	return nil
}

// LoadDotEnv loads a .env file into the process environment. A missing file
// is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load resolves defaults, then the file at path, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	fc, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyFile(fc); err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func getEnv(getenv func(string) string, key, defaultValue string) string {
	if value := strings.TrimSpace(getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setBool(target, value *bool) {
	if value != nil {
		*target = *value
	}
}

func setDuration(target *time.Duration, key string, value *string) error {
	if value == nil {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*value))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = d
	return nil
}
