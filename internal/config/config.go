package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	SSLDir       string `yaml:"ssl_dir"`        // root of the certificate store
	Domain       string `yaml:"domain"`         // default domain for setup/status
	Email        string `yaml:"email"`          // Let's Encrypt account email
	KeySize      int    `yaml:"key_size"`       // RSA key size for self-signed generation
	ValidityDays int    `yaml:"validity_days"`  // self-signed certificate lifetime
	MinDaysValid int    `yaml:"min_days_valid"` // hard validation gate for remaining validity
}

// configDir is the default config directory
const configDir = ".config/milou"
const configFile = "config.yaml"

// Defaults for self-signed generation and validation gates.
const (
	DefaultKeySize      = 2048
	DefaultValidityDays = 365
	DefaultMinDaysValid = 7
)

// New creates a new Config with default values
func New() *Config {
	return &Config{
		SSLDir:       defaultSSLDir(),
		Domain:       "localhost",
		KeySize:      DefaultKeySize,
		ValidityDays: DefaultValidityDays,
		MinDaysValid: DefaultMinDaysValid,
	}
}

// defaultSSLDir returns ~/.milou/ssl, falling back to a relative path when
// the home directory cannot be determined.
func defaultSSLDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".milou/ssl"
	}
	return filepath.Join(home, ".milou", "ssl")
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the config file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config from disk
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from the given path.
// A missing file yields the default config.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	if c.SSLDir == "" {
		c.SSLDir = defaultSSLDir()
	}
	if c.KeySize == 0 {
		c.KeySize = DefaultKeySize
	}
	if c.ValidityDays == 0 {
		c.ValidityDays = DefaultValidityDays
	}
	if c.MinDaysValid == 0 {
		c.MinDaysValid = DefaultMinDaysValid
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
