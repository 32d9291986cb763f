package cli

import (
	"github.com/milou-sh/milou-cli/internal/ca"
	"github.com/milou-sh/milou-cli/internal/config"
	"github.com/milou-sh/milou-cli/internal/executor"
	"github.com/milou-sh/milou-cli/internal/lifecycle"
	"github.com/milou-sh/milou-cli/internal/store"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader      ConfigLoader
	ControllerFactory ControllerFactory
}

// ConfigLoader handles configuration loading and saving
type ConfigLoader interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
}

// ControllerFactory creates lifecycle controllers over a loaded config
type ControllerFactory interface {
	Create(cfg *config.Config) *lifecycle.Controller
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:      &realConfigLoader{},
	ControllerFactory: &realControllerFactory{},
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load() (*config.Config, error) {
	return config.Load()
}

func (r *realConfigLoader) Save(cfg *config.Config) error {
	return cfg.Save()
}

type realControllerFactory struct{}

func (r *realControllerFactory) Create(cfg *config.Config) *lifecycle.Controller {
	return lifecycle.New(cfg, store.New(cfg.SSLDir), ca.NewX509Authority(), executor.NewSystemExecutor())
}
