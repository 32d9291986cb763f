package acquire

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/milou-sh/milou-cli/internal/errors"
	"github.com/milou-sh/milou-cli/internal/executor"
	"github.com/milou-sh/milou-cli/internal/logger"
	"github.com/milou-sh/milou-cli/internal/output"
	"github.com/milou-sh/milou-cli/internal/platform"
	"github.com/milou-sh/milou-cli/internal/proxy"
	"github.com/milou-sh/milou-cli/internal/store"
)

// letsencryptLiveDir is where certbot leaves issued certificates.
const letsencryptLiveDir = "/etc/letsencrypt/live"

// challengePort is the inbound port for the HTTP-01 validation.
const challengePort = 80

// LetsEncrypt obtains a domain-validated certificate through certbot.
// The ACME handshake itself is certbot's job; this strategy sequences
// tool provisioning, the port check, and the standalone/proxy-stop
// fallback.
type LetsEncrypt struct {
	Store *store.Store
	Exec  executor.CommandExecutor
	Email string

	// LiveDir overrides the certbot live directory (tests).
	LiveDir string

	// PortProbe overrides the port 80 availability check (tests).
	PortProbe func(port int) error

	// DetectProxy overrides reverse proxy detection (tests).
	DetectProxy func(executor.CommandExecutor) (proxy.Service, bool)
}

// Type returns the acquisition type for metadata.
func (l *LetsEncrypt) Type() store.AcquisitionType {
	return store.TypeLetsEncrypt
}

// Eligible reports whether domain can get a Let's Encrypt certificate:
// localhost and bare IP addresses are rejected, and every DNS label must
// be alphanumeric/hyphen, not hyphen-edged, and at most 63 characters.
// Single-label names are rejected too since no public CA validates them.
func Eligible(domain string) bool {
	if domain == "" || domain == "localhost" {
		return false
	}
	if net.ParseIP(domain) != nil {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !validLabel(label) {
			return false
		}
	}
	return true
}

func validLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}

// Acquire runs the full issuance sequence and installs the resulting
// pair into the store.
func (l *LetsEncrypt) Acquire(domain string) error {
	if !Eligible(domain) {
		return errors.WrapDomain(errors.ErrCodeValidation, domain,
			fmt.Errorf("not eligible for Let's Encrypt (public DNS hostname required)"))
	}

	if err := l.ensureCertbot(); err != nil {
		return err
	}

	portFree := l.probePort(challengePort) == nil
	if !portFree {
		logger.Warn("Port %d is busy; skipping standalone attempt", challengePort)
	}

	// Challenge strategy 1: standalone listener on port 80
	var standaloneErr error
	if portFree {
		standaloneErr = l.runCertbot(domain)
		if standaloneErr == nil {
			return l.installIssued(domain)
		}
		logger.Warn("Standalone challenge failed: %v", standaloneErr)
	}

	// Challenge strategy 2: pause the reverse proxy and retry
	if err := l.withProxyStopped(domain); err != nil {
		guidance := fmt.Sprintf(
			"verify that DNS for %s points to this host, port 80 is reachable from the internet, "+
				"and no other service holds the port; then re-run setup", domain)
		return errors.WrapDomain(errors.ErrCodeChallenge, domain,
			fmt.Errorf("%s (standalone: %v; proxy-stop: %v)", guidance, standaloneErr, err))
	}

	return l.installIssued(domain)
}

// ensureCertbot makes sure certbot is on PATH, installing it through the
// detected package manager when absent.
func (l *LetsEncrypt) ensureCertbot() error {
	if _, err := l.Exec.LookPath("certbot"); err == nil {
		return nil
	}
	output.Info("certbot not found, installing...")
	return platform.Install(l.Exec, "certbot")
}

// runCertbot requests a certificate in standalone mode.
func (l *LetsEncrypt) runCertbot(domain string) error {
	args := []string{
		"certonly",
		"--standalone",
		"-d", domain,
		"--agree-tos",
		"--non-interactive",
	}
	if l.Email != "" {
		args = append(args, "--email", l.Email)
	} else {
		args = append(args, "--register-unsafely-without-email")
	}

	out, err := l.Exec.Execute("certbot", args...)
	if err != nil {
		return fmt.Errorf("certbot failed: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

// withProxyStopped pauses the detected reverse proxy around a standalone
// attempt. The proxy is restarted even when the attempt fails.
func (l *LetsEncrypt) withProxyStopped(domain string) error {
	detect := l.DetectProxy
	if detect == nil {
		detect = proxy.Detect
	}

	svc, found := detect(l.Exec)
	if !found {
		return fmt.Errorf("no reverse proxy to stop")
	}

	if err := svc.Stop(); err != nil {
		return err
	}
	defer func() {
		if err := svc.Start(); err != nil {
			output.Warn("Failed to restart %s: %v", svc.Name(), err)
		}
	}()

	return l.runCertbot(domain)
}

// installIssued copies certbot's output into the store.
func (l *LetsEncrypt) installIssued(domain string) error {
	liveDir := l.LiveDir
	if liveDir == "" {
		liveDir = letsencryptLiveDir
	}

	certPEM, err := os.ReadFile(filepath.Join(liveDir, domain, "fullchain.pem"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeChallenge, "certbot reported success but left no certificate", err)
	}
	keyPEM, err := os.ReadFile(filepath.Join(liveDir, domain, "privkey.pem"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeChallenge, "certbot reported success but left no private key", err)
	}

	return l.Store.Install(certPEM, keyPEM)
}

// probePort checks whether the challenge port can be bound.
func (l *LetsEncrypt) probePort(port int) error {
	if l.PortProbe != nil {
		return l.PortProbe(port)
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	return listener.Close()
}
