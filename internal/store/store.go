// Package store owns the on-disk certificate store: the single live
// certificate/key pair, its metadata sidecar, and timestamped backups.
// All mutation of the live files goes through this package.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/milou-sh/milou-cli/internal/logger"
)

// Fixed file names inside the SSL directory.
const (
	CertFileName     = "milou.crt"
	KeyFileName      = "milou.key"
	MetadataFileName = ".ssl_info"
	GenConfFileName  = "openssl.conf"
	backupDirName    = "backup"
)

// File permission classes: certificates are world-readable, keys are
// owner-only.
const (
	certPerm = 0644
	keyPerm  = 0600
)

// backupStampFormat names backup files by operation time.
const backupStampFormat = "20060102_150405"

// Layout is the value object holding every path derived from the SSL root.
// It is constructed once and passed by reference; there is no ambient
// path state.
type Layout struct {
	Root string
}

// NewLayout builds a Layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{Root: dir}
}

// CertPath returns the live certificate path.
func (l Layout) CertPath() string { return filepath.Join(l.Root, CertFileName) }

// KeyPath returns the live private key path.
func (l Layout) KeyPath() string { return filepath.Join(l.Root, KeyFileName) }

// MetadataPath returns the metadata sidecar path.
func (l Layout) MetadataPath() string { return filepath.Join(l.Root, MetadataFileName) }

// GenConfPath returns the generation config record path.
func (l Layout) GenConfPath() string { return filepath.Join(l.Root, GenConfFileName) }

// BackupDir returns the backup directory path.
func (l Layout) BackupDir() string { return filepath.Join(l.Root, backupDirName) }

// Store manages the live certificate pair under a Layout.
type Store struct {
	layout Layout
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{layout: NewLayout(dir)}
}

// Layout returns the store's path layout.
func (s *Store) Layout() Layout {
	return s.layout
}

// Exists reports whether both the certificate and the key are present.
// Metadata absence does not affect this.
func (s *Store) Exists() bool {
	return fileExists(s.layout.CertPath()) && fileExists(s.layout.KeyPath())
}

// Backup copies whichever of certificate, key, and metadata exist into the
// backup directory, suffixed with a timestamp. It returns the stamp used,
// or an empty string when there was nothing to back up. A copy failure
// means the pending overwrite is unsafe and must abort.
func (s *Store) Backup() (string, error) {
	entries := []struct {
		src    string
		prefix string
	}{
		{s.layout.CertPath(), CertFileName},
		{s.layout.KeyPath(), KeyFileName},
		{s.layout.MetadataPath(), "ssl_info"},
	}

	any := false
	for _, e := range entries {
		if fileExists(e.src) {
			any = true
			break
		}
	}
	if !any {
		return "", nil
	}

	if err := os.MkdirAll(s.layout.BackupDir(), 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	stamp := s.nextStamp()
	for _, e := range entries {
		if !fileExists(e.src) {
			continue
		}
		dst := filepath.Join(s.layout.BackupDir(), e.prefix+"."+stamp)
		if err := copyFile(e.src, dst); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", e.src, err)
		}
	}

	logger.Debug("Backed up certificate store with stamp %s", stamp)
	return stamp, nil
}

// nextStamp returns a timestamp suffix not yet used in the backup
// directory. Repeated backups within the same second get a counter suffix
// so no backup is ever overwritten.
func (s *Store) nextStamp() string {
	base := time.Now().Format(backupStampFormat)
	stamp := base
	for i := 2; ; i++ {
		if !fileExists(filepath.Join(s.layout.BackupDir(), CertFileName+"."+stamp)) &&
			!fileExists(filepath.Join(s.layout.BackupDir(), KeyFileName+"."+stamp)) &&
			!fileExists(filepath.Join(s.layout.BackupDir(), "ssl_info."+stamp)) {
			return stamp
		}
		stamp = fmt.Sprintf("%s_%d", base, i)
	}
}

// Install writes the certificate and key as the live pair. Each file is
// written to a temp file in the SSL directory and renamed into place, so a
// crash never leaves a half-written live file. This is the only path that
// writes the live pair.
func (s *Store) Install(certPEM, keyPEM []byte) error {
	if err := os.MkdirAll(s.layout.Root, 0755); err != nil {
		return fmt.Errorf("failed to create SSL directory: %w", err)
	}

	if err := writeFileAtomic(s.layout.CertPath(), certPEM, certPerm); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := writeFileAtomic(s.layout.KeyPath(), keyPEM, keyPerm); err != nil {
		// Leave no orphaned cert without a key
		_ = os.Remove(s.layout.CertPath())
		return fmt.Errorf("failed to write private key: %w", err)
	}

	logger.Debug("Installed certificate pair into %s", s.layout.Root)
	return nil
}

// Restore copies the backup files with the given stamp back over the live
// pair. It is the rollback path after a failed install.
func (s *Store) Restore(stamp string) error {
	if stamp == "" {
		return fmt.Errorf("no backup stamp to restore")
	}

	certBak := filepath.Join(s.layout.BackupDir(), CertFileName+"."+stamp)
	keyBak := filepath.Join(s.layout.BackupDir(), KeyFileName+"."+stamp)

	if !fileExists(certBak) || !fileExists(keyBak) {
		return fmt.Errorf("backup %s is incomplete", stamp)
	}

	if err := copyFileMode(certBak, s.layout.CertPath(), certPerm); err != nil {
		return fmt.Errorf("failed to restore certificate: %w", err)
	}
	if err := copyFileMode(keyBak, s.layout.KeyPath(), keyPerm); err != nil {
		return fmt.Errorf("failed to restore private key: %w", err)
	}

	infoBak := filepath.Join(s.layout.BackupDir(), "ssl_info."+stamp)
	if fileExists(infoBak) {
		if err := copyFileMode(infoBak, s.layout.MetadataPath(), 0644); err != nil {
			logger.Warn("Failed to restore metadata from backup %s: %v", stamp, err)
		}
	}

	logger.Debug("Restored certificate store from backup %s", stamp)
	return nil
}

// Cleanup backs up the current state, then removes the certificate, key,
// and generation config. The metadata file is archived into the backup
// directory rather than deleted.
func (s *Store) Cleanup() error {
	stamp, err := s.Backup()
	if err != nil {
		return err
	}

	for _, path := range []string{s.layout.CertPath(), s.layout.KeyPath(), s.layout.GenConfPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	if fileExists(s.layout.MetadataPath()) {
		if stamp == "" {
			stamp = s.nextStamp()
		}
		if err := os.MkdirAll(s.layout.BackupDir(), 0755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
		dst := filepath.Join(s.layout.BackupDir(), "ssl_info."+stamp)
		// Backup() may already have copied it there; the rename replaces
		// the copy with the original.
		if err := os.Rename(s.layout.MetadataPath(), dst); err != nil {
			return fmt.Errorf("failed to archive metadata: %w", err)
		}
	}

	logger.Debug("Cleaned up certificate store at %s", s.layout.Root)
	return nil
}

// fileExists checks if a path exists on the filesystem.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// copyFile copies src to dst preserving the source mode.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return copyFileMode(src, dst, info.Mode().Perm())
}

// copyFileMode copies src to dst with the given mode.
func copyFileMode(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
