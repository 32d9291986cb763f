// Package ca provides the certificate-authority capability: private key
// generation and self-signing. The real implementation uses crypto/x509;
// tests substitute the mock so no real key generation happens in fast
// test paths.
package ca

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"strings"
	"time"
)

// Request describes a self-signed certificate to generate.
type Request struct {
	Domain       string
	KeySize      int
	ValidityDays int
	DNSNames     []string
	IPAddresses  []net.IP
}

// Authority is the capability interface for certificate generation.
type Authority interface {
	// SelfSign generates a fresh private key and a certificate signed by
	// it, returning both PEM-encoded.
	SelfSign(req Request) (certPEM, keyPEM []byte, err error)
}

// SANsFor returns the subject-alternative-name set for a self-signed
// certificate: the domain itself, localhost, 127.0.0.1, and a wildcard
// over the parent domain for non-local domains.
func SANsFor(domain string) (dns []string, ips []net.IP) {
	dns = []string{}
	ips = []net.IP{net.ParseIP("127.0.0.1")}

	if ip := net.ParseIP(domain); ip != nil {
		ips = append(ips, ip)
		dns = append(dns, "localhost")
		return dedupe(dns), dedupeIPs(ips)
	}

	dns = append(dns, domain)
	if domain != "localhost" {
		dns = append(dns, "localhost")
		if _, parent, ok := strings.Cut(domain, "."); ok && strings.Contains(parent, ".") {
			dns = append(dns, "*."+parent)
		}
	}
	return dedupe(dns), ips
}

// X509Authority is the real Authority backed by crypto/x509.
type X509Authority struct{}

// NewX509Authority creates the system certificate authority.
func NewX509Authority() *X509Authority {
	return &X509Authority{}
}

// SelfSign generates an RSA key of the requested size and a certificate
// self-signed with it.
func (a *X509Authority) SelfSign(req Request) ([]byte, []byte, error) {
	if req.Domain == "" {
		return nil, nil, fmt.Errorf("domain is required")
	}
	if req.KeySize == 0 {
		req.KeySize = 2048
	}
	if req.ValidityDays == 0 {
		req.ValidityDays = 365
	}
	if req.DNSNames == nil && req.IPAddresses == nil {
		req.DNSNames, req.IPAddresses = SANsFor(req.Domain)
	}

	key, err := rsa.GenerateKey(rand.Reader, req.KeySize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   req.Domain,
			Organization: []string{"Milou Self-Signed"},
		},
		// Backdated an hour to tolerate clock skew on the host
		NotBefore:             now.Add(-1 * time.Hour),
		NotAfter:              now.AddDate(0, 0, req.ValidityDays),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              req.DNSNames,
		IPAddresses:           req.IPAddresses,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	return certPEM, keyPEM, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func dedupeIPs(values []net.IP) []net.IP {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		key := v.String()
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}
