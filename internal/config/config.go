// Package config loads the process configuration of the guardrails service.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/guardrails/internal/alert"
)

// LogConfig controls logger construction.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "json" or "console"
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ServerConfig holds listener addresses.
type ServerConfig struct {
	Listen        string `yaml:"listen"`
	MetricsListen string `yaml:"metrics_listen"`
}

// ThresholdConfig is one warn/fail pair. An omitted side is disabled.
type ThresholdConfig struct {
	Warn *int64 `yaml:"warn"`
	Fail *int64 `yaml:"fail"`
}

// Values returns the pair with omitted sides set to -1.
func (t ThresholdConfig) Values() (warn, fail int64) {
	warn, fail = -1, -1
	if t.Warn != nil {
		warn = *t.Warn
	}
	if t.Fail != nil {
		fail = *t.Fail
	}
	return warn, fail
}

// GuardrailsConfig is the guardrail section. Only listed guardrails are
// touched; everything else keeps its built-in default.
type GuardrailsConfig struct {
	MinNotifyInterval time.Duration              `yaml:"min_notify_interval"`
	Thresholds        map[string]ThresholdConfig `yaml:"thresholds"`
	Flags             map[string]bool            `yaml:"flags"`
	Password          map[string]any             `yaml:"password"`
}

// Config is the full process configuration.
type Config struct {
	Log        LogConfig           `yaml:"log"`
	Server     ServerConfig        `yaml:"server"`
	AuditLog   string              `yaml:"audit_log"`
	Alerts     []alert.AlertConfig `yaml:"alerts"`
	Guardrails GuardrailsConfig    `yaml:"guardrails"`
}

const (
	DefaultListen = "127.0.0.1:9044"
	dirName       = ".guardrails"
	fileName      = "config.yaml"
)

// DefaultConfig returns the built-in configuration: console logging at
// info, every threshold disabled, every feature allowed, and the password
// policy installed with its default parameters.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Server: ServerConfig{
			Listen: DefaultListen,
		},
		Guardrails: GuardrailsConfig{
			Thresholds: map[string]ThresholdConfig{},
			Flags:      map[string]bool{},
			Password: map[string]any{
				"class_name":           "PasswordValidator",
				"generator_class_name": "PasswordGenerator",
			},
		},
	}
}

// DefaultPath returns ~/.guardrails/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName, fileName), nil
}

// LoadConfig loads configuration from a YAML file.
// Empty path falls back to ~/.guardrails/config.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads configuration and returns the SHA-256 hash of the
// raw bytes on disk. When no file exists the hash is that of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return DefaultConfig(), hashOf(nil), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), hashOf(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, "", err
	}
	return cfg, hashOf(data), nil
}

// Parse decodes YAML over the defaults: only specified fields change.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that are not guardrail parameters. Guardrail
// values are validated when applied to the registry.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log format %q: must be json or console", c.Log.Format)
	}
	if c.Guardrails.MinNotifyInterval < 0 {
		return fmt.Errorf("min_notify_interval can not be negative")
	}
	for i, a := range c.Alerts {
		if a.URL == "" {
			return fmt.Errorf("alerts[%d]: url is required", i)
		}
	}
	return nil
}

func hashOf(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

// DefaultConfigYAML returns a commented YAML string for init-config.
func DefaultConfigYAML() string {
	return `# guardrails configuration
# Generated by: guardrails init-config

log:
  level: info          # debug | info | warn | error
  format: console      # console | json
  # file: /var/log/guardrails/guardrails.log
  max_size_mb: 100
  max_backups: 3
  max_age_days: 28
  compress: false

server:
  listen: 127.0.0.1:9044
  # metrics_listen: 127.0.0.1:9045

# Hash-chained JSONL log of every guardrail warning and failure.
# audit_log: /var/lib/guardrails/audit.jsonl

# Webhooks notified on guardrail events.
# alerts:
#   - url: https://hooks.slack.com/services/...
#     format: slack      # generic | slack
#     events: [failed]   # warned | failed

guardrails:
  # Suppress repeated diagnostics of the same kind per guardrail.
  min_notify_interval: 0s

  # Numeric limits. -1 (or an omitted side) disables that side.
  # Max thresholds require warn <= fail; minimum_replication_factor
  # requires warn >= fail.
  thresholds:
    tables:
      warn: 150
      fail: -1
    columns_per_table:
      warn: -1
      fail: 200
    # minimum_replication_factor:
    #   warn: 3
    #   fail: 2

  # Feature gates. false forbids the feature for ordinary users.
  flags:
    allow_filtering: true
    drop_keyspace: true
    simplestrategy: true

  # Password strength policy. An empty class_name disables it.
  password:
    class_name: PasswordValidator
    generator_class_name: PasswordGenerator
    min_length_warn: 12
    min_length_fail: 8
    min_characteristics_warn: 3
    min_characteristics_fail: 2
    min_upper_case_chars_warn: 2
    min_upper_case_chars_fail: 1
    min_lower_case_chars_warn: 2
    min_lower_case_chars_fail: 1
    min_digits_chars_warn: 2
    min_digits_chars_fail: 1
    min_special_chars_warn: 2
    min_special_chars_fail: 1
    illegal_sequence_length: 5
`
}
