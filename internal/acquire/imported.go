package acquire

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/milou-sh/milou-cli/internal/errors"
	"github.com/milou-sh/milou-cli/internal/logger"
	"github.com/milou-sh/milou-cli/internal/store"
	"github.com/milou-sh/milou-cli/internal/validate"
)

// certNamePatterns is the fallback search order for certificates in a
// source directory.
var certNamePatterns = []string{
	"cert", "server", "certificate", "ssl",
}

// certExtensions are the recognized certificate file extensions.
var certExtensions = []string{".crt", ".pem"}

// fixedKeyNames are key file names tried when no basename-matched key
// exists.
var fixedKeyNames = []string{"privkey.pem", "private.key", "key.pem", "ssl.key"}

// keyExtCandidates are the extensions tried when guessing the peer key of
// a single certificate file.
var keyExtCandidates = []string{".key", ".key.pem", "-key.pem", ".pem"}

// Imported copies an externally provided certificate pair into the
// store. The source is validated before anything is copied: an
// unparseable source never reaches the live files.
type Imported struct {
	Store  *store.Store
	Source string
}

// Type returns the acquisition type for metadata.
func (i *Imported) Type() store.AcquisitionType {
	return store.TypeExisting
}

// Acquire resolves the source pair, validates it, and installs it.
func (i *Imported) Acquire(domain string) error {
	if i.Source == "" {
		return errors.Validation("existing mode requires a source path")
	}

	certPath, keyPath, err := ResolveSource(i.Source)
	if err != nil {
		return err
	}
	logger.Debug("Resolved import source: cert=%s key=%s", certPath, keyPath)

	// Validate before copying; the live store never receives an
	// unvalidated source
	if _, err := validate.CheckCertFormat(certPath); err != nil {
		return err
	}
	if _, err := validate.CheckKeyFormat(keyPath); err != nil {
		return err
	}

	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return fmt.Errorf("failed to read source certificate: %w", err)
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read source key: %w", err)
	}

	return i.Store.Install(certPEM, keyPEM)
}

// ResolveSource locates a certificate/key pair at path, which may be a
// single certificate file (peer key guessed by extension swapping) or a
// directory (priority-ordered format detection).
func ResolveSource(path string) (certPath, keyPath string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", errors.SourceNotFound(path)
		}
		return "", "", errors.Wrap(errors.ErrCodeSource, "failed to inspect source", err)
	}

	if info.IsDir() {
		return resolveDir(path)
	}
	return resolveFile(path)
}

// resolveFile treats path as the certificate and guesses its key by
// swapping the extension among the fixed candidate list.
func resolveFile(certPath string) (string, string, error) {
	dir := filepath.Dir(certPath)
	base := filepath.Base(certPath)

	// Let's-Encrypt-style sibling naming
	if base == "fullchain.pem" || base == "cert.pem" {
		if key := filepath.Join(dir, "privkey.pem"); fileExists(key) {
			return certPath, key, nil
		}
	}

	stem := strings.TrimSuffix(certPath, filepath.Ext(certPath))
	for _, ext := range keyExtCandidates {
		candidate := stem + ext
		if candidate != certPath && fileExists(candidate) {
			return certPath, candidate, nil
		}
	}

	return "", "", errors.AmbiguousSource(certPath)
}

// resolveDir searches a directory using priority-ordered format
// detection: the Let's Encrypt layout first, then cert.pem, then common
// name patterns.
func resolveDir(dir string) (string, string, error) {
	// Priority 1: fullchain.pem + privkey.pem
	if cert, key := filepath.Join(dir, "fullchain.pem"), filepath.Join(dir, "privkey.pem"); fileExists(cert) && fileExists(key) {
		return cert, key, nil
	}

	// Priority 2: cert.pem + privkey.pem
	if cert, key := filepath.Join(dir, "cert.pem"), filepath.Join(dir, "privkey.pem"); fileExists(cert) && fileExists(key) {
		return cert, key, nil
	}

	// Priority 3: common name patterns, paired by basename or fixed key
	// names. An unpaired certificate does not stop the search; a later
	// pattern may still resolve.
	var unpaired string
	for _, name := range certNamePatterns {
		for _, ext := range certExtensions {
			cert := filepath.Join(dir, name+ext)
			if !fileExists(cert) {
				continue
			}
			if key := filepath.Join(dir, name+".key"); fileExists(key) {
				return cert, key, nil
			}
			for _, keyName := range fixedKeyNames {
				if key := filepath.Join(dir, keyName); fileExists(key) {
					return cert, key, nil
				}
			}
			if unpaired == "" {
				unpaired = cert
			}
		}
	}

	if unpaired != "" {
		return "", "", errors.AmbiguousSource(unpaired)
	}
	return "", "", errors.SourceNotFound(dir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
