package cli

import (
	"fmt"

	"github.com/milou-sh/milou-cli/internal/config"
	"github.com/milou-sh/milou-cli/internal/lifecycle"
	"github.com/milou-sh/milou-cli/internal/output"
)

// loadController loads config and builds the lifecycle controller,
// applying the --ssl-dir override before the store is created.
func loadController() (*config.Config, *lifecycle.Controller, error) {
	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if sslDir != "" {
		cfg.SSLDir = sslDir
	}

	return cfg, deps.ControllerFactory.Create(cfg), nil
}

// resolveDomain returns the positional domain argument, falling back to
// the configured default.
func resolveDomain(args []string, cfg *config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Domain
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// yesNo renders a boolean for table output
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
