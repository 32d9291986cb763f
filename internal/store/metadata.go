package store

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AcquisitionType records how the installed certificate was obtained.
type AcquisitionType string

// Known acquisition types.
const (
	TypeSelfSigned  AcquisitionType = "self-signed"
	TypeLetsEncrypt AcquisitionType = "letsencrypt"
	TypeExisting    AcquisitionType = "existing"
	TypePreserved   AcquisitionType = "preserved"
)

// Valid reports whether t is a known acquisition type.
func (t AcquisitionType) Valid() bool {
	switch t {
	case TypeSelfSigned, TypeLetsEncrypt, TypeExisting, TypePreserved:
		return true
	}
	return false
}

// Metadata is the advisory sidecar record written on every successful
// install. It is purely descriptive; validation always re-derives truth
// from the PEM files.
type Metadata struct {
	Domain       string
	Type         AcquisitionType
	GeneratedAt  time.Time
	CertFile     string
	KeyFile      string
	ValidityDays int
	KeySize      int
}

// WriteMetadata overwrites the metadata sidecar unconditionally. Metadata
// is advisory only, so this call has no validation gate.
func (s *Store) WriteMetadata(md Metadata) error {
	if md.CertFile == "" {
		md.CertFile = s.layout.CertPath()
	}
	if md.KeyFile == "" {
		md.KeyFile = s.layout.KeyPath()
	}
	if md.GeneratedAt.IsZero() {
		md.GeneratedAt = time.Now().UTC()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "DOMAIN=%s\n", md.Domain)
	fmt.Fprintf(&b, "SSL_TYPE=%s\n", md.Type)
	fmt.Fprintf(&b, "GENERATED_AT=%s\n", md.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "CERT_FILE=%s\n", md.CertFile)
	fmt.Fprintf(&b, "KEY_FILE=%s\n", md.KeyFile)
	fmt.Fprintf(&b, "VALIDITY_DAYS=%d\n", md.ValidityDays)
	fmt.Fprintf(&b, "KEY_SIZE=%d\n", md.KeySize)

	if err := os.MkdirAll(s.layout.Root, 0755); err != nil {
		return fmt.Errorf("failed to create SSL directory: %w", err)
	}
	if err := os.WriteFile(s.layout.MetadataPath(), []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// ReadMetadata parses the metadata sidecar. A missing file is not an
// error; it returns (nil, nil).
func (s *Store) ReadMetadata() (*Metadata, error) {
	f, err := os.Open(s.layout.MetadataPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	defer f.Close()

	md := &Metadata{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "DOMAIN":
			md.Domain = value
		case "SSL_TYPE":
			md.Type = AcquisitionType(value)
		case "GENERATED_AT":
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				md.GeneratedAt = ts
			}
		case "CERT_FILE":
			md.CertFile = value
		case "KEY_FILE":
			md.KeyFile = value
		case "VALIDITY_DAYS":
			if n, err := strconv.Atoi(value); err == nil {
				md.ValidityDays = n
			}
		case "KEY_SIZE":
			if n, err := strconv.Atoi(value); err == nil {
				md.KeySize = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	return md, nil
}
