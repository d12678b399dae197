package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Service.ListenAddr != "127.0.0.1:8775" {
		t.Errorf("default listen addr = %q", cfg.Service.ListenAddr)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("default store driver = %q", cfg.Store.Driver)
	}
	if cfg.Generation.Players != 2 || cfg.Generation.Symmetry != "rotational" {
		t.Errorf("default generation = %+v", cfg.Generation)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("default log level = %q", cfg.Logging.Level)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Generation.Attempts != DefaultConfig().Generation.Attempts {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	doc := `
service:
  listen_addr: "0.0.0.0:9000"
  allowed_origins: ["https://maps.example.com"]
generation:
  width: 128
  height: 96
  symmetry: mirror
logging:
  level: DEBUG
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Service.ListenAddr != "0.0.0.0:9000" {
		t.Errorf("listen addr = %q", cfg.Service.ListenAddr)
	}
	if len(cfg.Service.AllowedOrigins) != 1 {
		t.Errorf("allowed origins = %v", cfg.Service.AllowedOrigins)
	}
	if cfg.Generation.Width != 128 || cfg.Generation.Height != 96 {
		t.Errorf("generation size = %dx%d", cfg.Generation.Width, cfg.Generation.Height)
	}
	if cfg.Generation.Symmetry != "mirror" {
		t.Errorf("symmetry = %q", cfg.Generation.Symmetry)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("store driver = %q, want default", cfg.Store.Driver)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("service: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed YAML should error")
	}
}
