package acquire

import (
	"fmt"
	"os"

	"github.com/milou-sh/milou-cli/internal/ca"
	"github.com/milou-sh/milou-cli/internal/logger"
	"github.com/milou-sh/milou-cli/internal/store"
	"github.com/milou-sh/milou-cli/internal/template"
)

// SelfSigned generates a fresh key and self-signed certificate locally.
// It always regenerates when invoked; skipping an existing valid pair is
// the lifecycle controller's decision, not this strategy's.
type SelfSigned struct {
	Store        *store.Store
	Authority    ca.Authority
	KeySize      int
	ValidityDays int
}

// Type returns the acquisition type for metadata.
func (s *SelfSigned) Type() store.AcquisitionType {
	return store.TypeSelfSigned
}

// Acquire writes the generation config record, self-signs a fresh pair
// through the certificate authority, and installs it.
func (s *SelfSigned) Acquire(domain string) error {
	dns, ips := ca.SANsFor(domain)

	ipStrings := make([]string, 0, len(ips))
	for _, ip := range ips {
		ipStrings = append(ipStrings, ip.String())
	}

	conf, err := template.RenderGenConf(template.GenConfData{
		Domain:      domain,
		KeySize:     s.KeySize,
		DNSNames:    dns,
		IPAddresses: ipStrings,
	})
	if err != nil {
		return fmt.Errorf("failed to render generation config: %w", err)
	}

	layout := s.Store.Layout()
	if err := os.MkdirAll(layout.Root, 0755); err != nil {
		return fmt.Errorf("failed to create SSL directory: %w", err)
	}
	// Regenerated fresh on every run; never reused across calls
	if err := os.WriteFile(layout.GenConfPath(), []byte(conf), 0644); err != nil {
		return fmt.Errorf("failed to write generation config: %w", err)
	}

	logger.Info("Generating self-signed certificate for %s (%d bits, %d days)", domain, s.KeySize, s.ValidityDays)
	certPEM, keyPEM, err := s.Authority.SelfSign(ca.Request{
		Domain:       domain,
		KeySize:      s.KeySize,
		ValidityDays: s.ValidityDays,
		DNSNames:     dns,
		IPAddresses:  ips,
	})
	if err != nil {
		return fmt.Errorf("certificate generation failed: %w", err)
	}

	return s.Store.Install(certPEM, keyPEM)
}
