// Package platform provides system package manager detection for
// installing external tools.
package platform

import (
	"fmt"
	"strings"

	"github.com/milou-sh/milou-cli/internal/errors"
	"github.com/milou-sh/milou-cli/internal/executor"
	"github.com/milou-sh/milou-cli/internal/logger"
)

// PackageManager identifies a supported system package manager family.
type PackageManager string

// Supported package manager families, in probe order.
const (
	Apt    PackageManager = "apt-get" // Debian/Ubuntu
	Dnf    PackageManager = "dnf"     // Fedora/RHEL 8+
	Yum    PackageManager = "yum"     // older RHEL/CentOS
	Pacman PackageManager = "pacman"  // Arch
)

// probeOrder is the detection priority. apt-get first because Debian
// derivatives are the most common deployment target.
var probeOrder = []PackageManager{Apt, Dnf, Yum, Pacman}

// DetectPackageManager probes PATH for a known package manager.
func DetectPackageManager(exec executor.CommandExecutor) (PackageManager, error) {
	var probed []string
	for _, pm := range probeOrder {
		if _, err := exec.LookPath(string(pm)); err == nil {
			logger.Debug("Detected package manager: %s", pm)
			return pm, nil
		}
		probed = append(probed, string(pm))
	}
	return "", errors.Wrap(errors.ErrCodePackageManager,
		fmt.Sprintf("unsupported package manager (probed %s)", strings.Join(probed, ", ")), nil)
}

// InstallCommand returns the command and arguments that install pkg with
// this package manager.
func (p PackageManager) InstallCommand(pkg string) (string, []string) {
	switch p {
	case Pacman:
		return string(p), []string{"-S", "--noconfirm", pkg}
	default:
		// apt-get, dnf, and yum share the install verb
		return string(p), []string{"install", "-y", pkg}
	}
}

// Install detects the system package manager and installs pkg with it.
func Install(exec executor.CommandExecutor, pkg string) error {
	pm, err := DetectPackageManager(exec)
	if err != nil {
		return err
	}

	name, args := pm.InstallCommand(pkg)
	logger.Info("Installing %s via %s", pkg, pm)
	output, err := exec.Execute(name, args...)
	if err != nil {
		return fmt.Errorf("failed to install %s with %s: %s", pkg, pm, strings.TrimSpace(string(output)))
	}
	return nil
}
