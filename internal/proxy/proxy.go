// Package proxy controls the host's reverse proxy service. The Let's
// Encrypt standalone challenge needs port 80, so the acquisition fallback
// stops the proxy for the duration of the challenge and restarts it after.
package proxy

import (
	"fmt"
	"strings"

	"github.com/milou-sh/milou-cli/internal/executor"
	"github.com/milou-sh/milou-cli/internal/logger"
)

// Service is a controllable reverse proxy service.
type Service interface {
	// Name returns the systemd unit name
	Name() string

	// Stop stops the service
	Stop() error

	// Start starts the service
	Start() error
}

// candidates are the reverse proxies this tool knows how to pause, in
// probe order.
var candidates = []string{"nginx", "apache2", "httpd", "caddy"}

// SystemdService controls a service through systemctl.
type SystemdService struct {
	unit string
	exec executor.CommandExecutor
}

// NewSystemdService creates a service handle for the given unit.
func NewSystemdService(unit string, exec executor.CommandExecutor) *SystemdService {
	return &SystemdService{unit: unit, exec: exec}
}

// Name returns the systemd unit name.
func (s *SystemdService) Name() string {
	return s.unit
}

// Stop stops the service via systemctl.
func (s *SystemdService) Stop() error {
	logger.Info("Stopping %s", s.unit)
	output, err := s.exec.Execute("systemctl", "stop", s.unit)
	if err != nil {
		return fmt.Errorf("failed to stop %s: %s", s.unit, strings.TrimSpace(string(output)))
	}
	return nil
}

// Start starts the service via systemctl.
func (s *SystemdService) Start() error {
	logger.Info("Starting %s", s.unit)
	output, err := s.exec.Execute("systemctl", "start", s.unit)
	if err != nil {
		return fmt.Errorf("failed to start %s: %s", s.unit, strings.TrimSpace(string(output)))
	}
	return nil
}

// Detect probes for an active reverse proxy service. The second return
// value is false when none of the known proxies is running.
func Detect(exec executor.CommandExecutor) (Service, bool) {
	for _, unit := range candidates {
		output, err := exec.Execute("systemctl", "is-active", unit)
		if err == nil && strings.TrimSpace(string(output)) == "active" {
			logger.Debug("Detected active reverse proxy: %s", unit)
			return NewSystemdService(unit, exec), true
		}
	}
	return nil, false
}
