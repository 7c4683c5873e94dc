package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Listen != DefaultListen {
		t.Errorf("expected listen %s, got %s", DefaultListen, cfg.Server.Listen)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("unexpected log defaults %+v", cfg.Log)
	}
	if cfg.Guardrails.Password["class_name"] != "PasswordValidator" {
		t.Errorf("password policy should be installed by default: %v", cfg.Guardrails.Password)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, hash, err := LoadConfigWithHash("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Server.Listen != DefaultListen {
		t.Errorf("expected defaults, got %+v", cfg.Server)
	}
	if hash != "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("expected empty-input hash, got %s", hash)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: debug
  format: json
guardrails:
  min_notify_interval: 30s
  thresholds:
    tables:
      warn: 10
      fail: 20
    page_size:
      fail: 5000
  flags:
    allow_filtering: false
  password:
    min_length_warn: 14
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, hash, err := LoadConfigWithHash(path)
	if err != nil {
		t.Fatalf("LoadConfigWithHash: %v", err)
	}
	if !strings.HasPrefix(hash, "sha256:") || len(hash) != len("sha256:")+64 {
		t.Errorf("unexpected hash %q", hash)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log not overridden: %+v", cfg.Log)
	}
	if cfg.Log.MaxBackups != 3 {
		t.Errorf("unspecified fields should keep defaults, got %d", cfg.Log.MaxBackups)
	}
	if cfg.Server.Listen != DefaultListen {
		t.Errorf("server should keep defaults, got %s", cfg.Server.Listen)
	}
	if cfg.Guardrails.MinNotifyInterval != 30*time.Second {
		t.Errorf("min_notify_interval = %s", cfg.Guardrails.MinNotifyInterval)
	}

	warn, fail := cfg.Guardrails.Thresholds["tables"].Values()
	if warn != 10 || fail != 20 {
		t.Errorf("tables = (%d, %d)", warn, fail)
	}
	warn, fail = cfg.Guardrails.Thresholds["page_size"].Values()
	if warn != -1 || fail != 5000 {
		t.Errorf("page_size = (%d, %d)", warn, fail)
	}
	if cfg.Guardrails.Flags["allow_filtering"] {
		t.Error("allow_filtering should be false")
	}
	if cfg.Guardrails.Password["min_length_warn"] != 14 {
		t.Errorf("password override missing: %v", cfg.Guardrails.Password)
	}
	if cfg.Guardrails.Password["class_name"] != "PasswordValidator" {
		t.Errorf("password defaults should merge with overrides: %v", cfg.Guardrails.Password)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "log: [unclosed", "failed to parse config"},
		{"bad format", "log:\n  format: xml\n", "invalid log format"},
		{"alert without url", "alerts:\n  - format: slack\n", "alerts[0]: url is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDefaultConfigYAMLParses(t *testing.T) {
	cfg, err := Parse([]byte(DefaultConfigYAML()))
	if err != nil {
		t.Fatalf("default YAML does not parse: %v", err)
	}
	warn, fail := cfg.Guardrails.Thresholds["tables"].Values()
	if warn != 150 || fail != -1 {
		t.Errorf("tables = (%d, %d)", warn, fail)
	}
	if cfg.Guardrails.Password["illegal_sequence_length"] != 5 {
		t.Errorf("password section = %v", cfg.Guardrails.Password)
	}
}
