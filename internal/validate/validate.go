// Package validate inspects candidate certificate/key pairs and reports
// structured health facts. Every function here is a pure read: nothing in
// this package mutates the certificate store, and metadata is never
// consulted; truth is always re-derived from the PEM files.
package validate

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/milou-sh/milou-cli/internal/errors"
	"github.com/milou-sh/milou-cli/internal/logger"
)

// ExpiringSoonDays is the display-only threshold for the "expires soon"
// flag. It never fails a validation gate.
const ExpiringSoonDays = 30

// Report is the transient result of a validation pass. It is recomputed
// on every check and never persisted.
type Report struct {
	Domain          string    `json:"domain"`
	CertFormatValid bool      `json:"cert_format_valid"`
	KeyFormatValid  bool      `json:"key_format_valid"`
	PairMatches     bool      `json:"pair_matches"`
	Expired         bool      `json:"expired"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	ExpiringSoon    bool      `json:"expiring_soon"`
	DomainMatches   bool      `json:"domain_matches"`
	NotAfter        time.Time `json:"not_after,omitempty"`
	Subject         string    `json:"subject,omitempty"`
	Passed          bool      `json:"passed"`
	Problems        []string  `json:"problems,omitempty"`
	Warnings        []string  `json:"warnings,omitempty"`
}

// record routes a finding into the report: soft errors become advisory
// warnings, everything else is a problem that fails the check.
func (r *Report) record(err error) {
	if errors.IsSoft(err) {
		r.Warnings = append(r.Warnings, err.Error())
		return
	}
	r.Problems = append(r.Problems, err.Error())
}

// CheckCertFormat parses the file as a PEM-encoded X.509 certificate.
// Structural validity only; no semantic checks.
func CheckCertFormat(certPath string) (*x509.Certificate, error) {
	data, err := os.ReadFile(certPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.MissingFile(certPath)
		}
		return nil, errors.Wrap(errors.ErrCodeMalformedCert, "failed to read certificate", err)
	}
	return ParseCertificate(data, certPath)
}

// ParseCertificate parses PEM bytes as an X.509 certificate. When the file
// holds a chain, the leaf (first block) is returned.
func ParseCertificate(data []byte, path string) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, errors.MalformedCert(path, fmt.Errorf("no certificate PEM block"))
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, errors.MalformedCert(path, err)
	}
	return cert, nil
}

// CheckKeyFormat parses the file as a PEM-encoded private key.
func CheckKeyFormat(keyPath string) (crypto.Signer, error) {
	data, err := os.ReadFile(keyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.MissingFile(keyPath)
		}
		return nil, errors.Wrap(errors.ErrCodeMalformedKey, "failed to read private key", err)
	}
	return ParsePrivateKey(data, keyPath)
}

// ParsePrivateKey parses PEM bytes as a private key. The RSA-specific
// format is tried first, then PKCS#8 and SEC1 as generic fallbacks so EC
// keys are admitted too.
func ParsePrivateKey(data []byte, path string) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.MalformedKey(path, fmt.Errorf("no PEM block"))
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, errors.MalformedKey(path, fmt.Errorf("unsupported key type %T", key))
		}
		return signer, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, errors.MalformedKey(path, fmt.Errorf("not an RSA, PKCS#8, or EC private key"))
}

// PairMatches extracts the public component from the certificate and the
// private key independently and compares them. A mismatch is a hard
// validation failure: it is the check that prevents installing a
// certificate with the wrong key.
func PairMatches(certPath, keyPath string) (bool, error) {
	cert, err := CheckCertFormat(certPath)
	if err != nil {
		return false, err
	}
	key, err := CheckKeyFormat(keyPath)
	if err != nil {
		return false, err
	}
	return publicKeysEqual(cert.PublicKey, key.Public()), nil
}

// publicKeysEqual compares the public components (RSA modulus, EC point,
// or equivalent) of the two keys.
func publicKeysEqual(certPub, keyPub crypto.PublicKey) bool {
	type equaler interface {
		Equal(x crypto.PublicKey) bool
	}
	pub, ok := certPub.(equaler)
	if !ok {
		return false
	}
	return pub.Equal(keyPub)
}

// DaysUntilExpiry returns whole days of validity remaining; negative when
// already expired.
func DaysUntilExpiry(cert *x509.Certificate) int {
	return int(time.Until(cert.NotAfter).Hours() / 24)
}

// CheckExpiry fails when the certificate has expired or when remaining
// validity is below minDays.
func CheckExpiry(certPath string, minDays int) error {
	cert, err := CheckCertFormat(certPath)
	if err != nil {
		return err
	}

	if time.Now().After(cert.NotAfter) {
		return errors.Expired(cert.Subject.CommonName)
	}
	if days := DaysUntilExpiry(cert); days < minDays {
		return errors.Wrap(errors.ErrCodeExpired,
			fmt.Sprintf("certificate valid for only %d more days (minimum %d)", days, minDays), nil)
	}
	return nil
}

// DomainMatches checks whether the certificate covers domain. Exact
// CN/SAN match is tried first, then a wildcard over the domain's parent,
// then the localhost special case where localhost and 127.0.0.1 satisfy
// each other. The result is advisory: operators may legitimately run
// mismatched certificates behind a reverse proxy.
func DomainMatches(certPath, domain string) (bool, error) {
	cert, err := CheckCertFormat(certPath)
	if err != nil {
		return false, err
	}
	return certCoversDomain(cert, domain), nil
}

func certCoversDomain(cert *x509.Certificate, domain string) bool {
	names := make(map[string]bool)
	if cert.Subject.CommonName != "" {
		names[cert.Subject.CommonName] = true
	}
	for _, name := range cert.DNSNames {
		names[name] = true
	}
	for _, ip := range cert.IPAddresses {
		names[ip.String()] = true
	}

	// Exact CN/SAN match
	if names[domain] {
		return true
	}

	// Wildcard over the parent domain; the bare parent is not covered
	if _, parent, ok := strings.Cut(domain, "."); ok && parent != "" {
		if names["*."+parent] {
			return true
		}
	}

	// Local deployments: localhost and the loopback address satisfy
	// each other
	if isLocal(domain) && (names["localhost"] || names["127.0.0.1"]) {
		return true
	}

	return false
}

func isLocal(domain string) bool {
	if domain == "localhost" {
		return true
	}
	ip := net.ParseIP(domain)
	return ip != nil && ip.IsLoopback()
}

// FullCheck aggregates the format, pair, and expiry checks as hard gates
// and the domain and near-expiry checks as soft findings, producing the
// Report the lifecycle controller commits or rolls back on. Hard findings
// land in Problems, soft ones in Warnings.
func FullCheck(certPath, keyPath, domain string, minDays int) *Report {
	report := &Report{Domain: domain, DomainMatches: true}

	cert, err := CheckCertFormat(certPath)
	if err != nil {
		report.record(err)
	} else {
		report.CertFormatValid = true
		report.NotAfter = cert.NotAfter
		report.Subject = cert.Subject.String()
	}

	key, err := CheckKeyFormat(keyPath)
	if err != nil {
		report.record(err)
	} else {
		report.KeyFormatValid = true
	}

	if cert != nil && key != nil {
		report.PairMatches = publicKeysEqual(cert.PublicKey, key.Public())
		if !report.PairMatches {
			report.record(errors.KeyMismatch(domain))
		}
	}

	expiryOK := false
	if cert != nil {
		report.DaysUntilExpiry = DaysUntilExpiry(cert)
		report.Expired = time.Now().After(cert.NotAfter)
		report.ExpiringSoon = !report.Expired && report.DaysUntilExpiry < ExpiringSoonDays

		switch {
		case report.Expired:
			report.record(errors.Expired(domain))
		case report.DaysUntilExpiry < minDays:
			report.record(errors.Wrap(errors.ErrCodeExpired,
				fmt.Sprintf("certificate valid for only %d more days (minimum %d)", report.DaysUntilExpiry, minDays), nil))
		default:
			expiryOK = true
			if report.ExpiringSoon {
				report.record(errors.ExpiringSoon(domain, report.DaysUntilExpiry))
			}
		}

		report.DomainMatches = certCoversDomain(cert, domain)
		if !report.DomainMatches {
			report.record(errors.DomainMismatch(domain))
			logger.Warn("Certificate does not cover domain %s (subject %s)", domain, cert.Subject.CommonName)
		}
	}

	report.Passed = report.CertFormatValid && report.KeyFormatValid && report.PairMatches && expiryOK
	return report
}
