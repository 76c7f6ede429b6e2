package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: qrshield\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d, want 8080", cfg.Server.HTTPPort)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want info", cfg.Logger.Level)
	}
	if !cfg.Analysis.ExpandShortened {
		t.Error("ExpandShortened should default to true")
	}
	if cfg.Sources.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %v, want 1h", cfg.Sources.CacheTTL)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis should default to disabled")
	}
}

func TestLoadFileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  http_port: 9999
  shutdown_timeout: 5s
redis:
  enabled: true
  host: redis.internal
  port: 6380
analysis:
  expand_shortened: false
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.HTTPPort != 9999 {
		t.Errorf("HTTPPort = %d, want 9999", cfg.Server.HTTPPort)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Redis.Addr() != "redis.internal:6380" {
		t.Errorf("Redis.Addr() = %q", cfg.Redis.Addr())
	}
	if cfg.Analysis.ExpandShortened {
		t.Error("ExpandShortened should be false")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("QRSHIELD_SERVER_HTTP_PORT", "7070")
	t.Setenv("QRSHIELD_REDIS_HOST", "cache.internal")

	cfg, err := Load(writeConfig(t, "app:\n  name: qrshield\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.HTTPPort != 7070 {
		t.Errorf("HTTPPort = %d, want env override 7070", cfg.Server.HTTPPort)
	}
	if cfg.Redis.Host != "cache.internal" {
		t.Errorf("Redis.Host = %q, want env override", cfg.Redis.Host)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for an explicitly named missing file")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}
