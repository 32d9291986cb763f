package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	if cfg.KeySize != DefaultKeySize {
		t.Errorf("KeySize = %d, want %d", cfg.KeySize, DefaultKeySize)
	}
	if cfg.ValidityDays != DefaultValidityDays {
		t.Errorf("ValidityDays = %d, want %d", cfg.ValidityDays, DefaultValidityDays)
	}
	if cfg.MinDaysValid != DefaultMinDaysValid {
		t.Errorf("MinDaysValid = %d, want %d", cfg.MinDaysValid, DefaultMinDaysValid)
	}
	if cfg.Domain != "localhost" {
		t.Errorf("Domain = %s, want localhost", cfg.Domain)
	}
	if cfg.SSLDir == "" {
		t.Error("SSLDir should have a default")
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom missing file should return defaults, got error: %v", err)
	}
	if cfg.KeySize != DefaultKeySize {
		t.Errorf("missing file should yield defaults, KeySize = %d", cfg.KeySize)
	}
}

func TestLoadFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "ssl_dir: /opt/milou/ssl\ndomain: example.com\nemail: admin@example.com\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.SSLDir != "/opt/milou/ssl" {
		t.Errorf("SSLDir = %s", cfg.SSLDir)
	}
	if cfg.Domain != "example.com" {
		t.Errorf("Domain = %s", cfg.Domain)
	}
	if cfg.Email != "admin@example.com" {
		t.Errorf("Email = %s", cfg.Email)
	}
	// Unset numeric fields fall back to defaults
	if cfg.KeySize != DefaultKeySize || cfg.ValidityDays != DefaultValidityDays {
		t.Errorf("partial config should keep numeric defaults, got %d/%d", cfg.KeySize, cfg.ValidityDays)
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ssl_dir: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("invalid yaml should return an error")
	}
}
