package cli

import (
	"github.com/milou-sh/milou-cli/internal/ca"
	"github.com/milou-sh/milou-cli/internal/config"
	"github.com/milou-sh/milou-cli/internal/executor"
	"github.com/milou-sh/milou-cli/internal/lifecycle"
	"github.com/milou-sh/milou-cli/internal/store"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	SaveCalls int
}

func (m *MockConfigLoader) Load() (*config.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	return nil
}

// MockControllerFactory is a test double for ControllerFactory. It hands
// out a prebuilt controller so tests control the store and authority.
type MockControllerFactory struct {
	Controller *lifecycle.Controller
	Calls      int
}

func (m *MockControllerFactory) Create(cfg *config.Config) *lifecycle.Controller {
	m.Calls++
	if m.Controller != nil {
		return m.Controller
	}
	return lifecycle.New(cfg, store.New(cfg.SSLDir), &ca.MockAuthority{}, &executor.MockExecutor{})
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:      &MockConfigLoader{Cfg: config.New()},
			ControllerFactory: &MockControllerFactory{},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithController sets a prebuilt controller
func (b *MockDependenciesBuilder) WithController(c *lifecycle.Controller) *MockDependenciesBuilder {
	b.deps.ControllerFactory = &MockControllerFactory{Controller: c}
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}
