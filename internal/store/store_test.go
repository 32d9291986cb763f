package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExists(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		s := New(t.TempDir())
		if s.Exists() {
			t.Error("empty store should not exist")
		}
	})

	t.Run("cert without key is not installed", func(t *testing.T) {
		s := New(t.TempDir())
		if err := os.WriteFile(s.Layout().CertPath(), []byte("cert"), 0644); err != nil {
			t.Fatal(err)
		}
		if s.Exists() {
			t.Error("a partial pair must never count as installed")
		}
	})

	t.Run("full pair", func(t *testing.T) {
		s := New(t.TempDir())
		if err := s.Install([]byte("cert"), []byte("key")); err != nil {
			t.Fatal(err)
		}
		if !s.Exists() {
			t.Error("installed pair should exist")
		}
	})
}

func TestInstallPermissions(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Install([]byte("cert"), []byte("key")); err != nil {
		t.Fatal(err)
	}

	certInfo, err := os.Stat(s.Layout().CertPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := certInfo.Mode().Perm(); perm != 0644 {
		t.Errorf("certificate permissions = %o, want 644", perm)
	}

	keyInfo, err := os.Stat(s.Layout().KeyPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := keyInfo.Mode().Perm(); perm != 0600 {
		t.Errorf("key permissions = %o, want 600", perm)
	}
}

func TestBackup(t *testing.T) {
	t.Run("nothing to back up", func(t *testing.T) {
		s := New(t.TempDir())
		stamp, err := s.Backup()
		if err != nil {
			t.Fatalf("empty backup should be a no-op, got %v", err)
		}
		if stamp != "" {
			t.Errorf("expected empty stamp, got %s", stamp)
		}
	})

	t.Run("backs up present files", func(t *testing.T) {
		s := New(t.TempDir())
		if err := s.Install([]byte("cert"), []byte("key")); err != nil {
			t.Fatal(err)
		}
		if err := s.WriteMetadata(Metadata{Domain: "example.com", Type: TypeSelfSigned}); err != nil {
			t.Fatal(err)
		}

		stamp, err := s.Backup()
		if err != nil {
			t.Fatal(err)
		}
		if stamp == "" {
			t.Fatal("expected a backup stamp")
		}

		for _, name := range []string{
			CertFileName + "." + stamp,
			KeyFileName + "." + stamp,
			"ssl_info." + stamp,
		} {
			if _, err := os.Stat(filepath.Join(s.Layout().BackupDir(), name)); err != nil {
				t.Errorf("missing backup file %s: %v", name, err)
			}
		}
	})

	t.Run("repeated backups never overwrite", func(t *testing.T) {
		s := New(t.TempDir())
		if err := s.Install([]byte("cert"), []byte("key")); err != nil {
			t.Fatal(err)
		}

		stamps := make(map[string]bool)
		for i := 0; i < 3; i++ {
			stamp, err := s.Backup()
			if err != nil {
				t.Fatal(err)
			}
			if stamps[stamp] {
				t.Fatalf("stamp %s reused", stamp)
			}
			stamps[stamp] = true
		}

		entries, err := os.ReadDir(s.Layout().BackupDir())
		if err != nil {
			t.Fatal(err)
		}
		// 3 backups x cert+key
		if len(entries) != 6 {
			t.Errorf("expected 6 backup files, got %d", len(entries))
		}
	})
}

func TestRestore(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Install([]byte("old cert"), []byte("old key")); err != nil {
		t.Fatal(err)
	}

	stamp, err := s.Backup()
	if err != nil {
		t.Fatal(err)
	}

	// Overwrite with a broken candidate, then roll back
	if err := s.Install([]byte("broken cert"), []byte("broken key")); err != nil {
		t.Fatal(err)
	}
	if err := s.Restore(stamp); err != nil {
		t.Fatal(err)
	}

	cert, err := os.ReadFile(s.Layout().CertPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(cert) != "old cert" {
		t.Errorf("restored cert = %q, want old cert", cert)
	}

	keyInfo, err := os.Stat(s.Layout().KeyPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := keyInfo.Mode().Perm(); perm != 0600 {
		t.Errorf("restored key permissions = %o, want 600", perm)
	}
}

func TestRestoreMissingBackup(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Restore("20200101_000000"); err == nil {
		t.Error("restoring a nonexistent backup should fail")
	}
	if err := s.Restore(""); err == nil {
		t.Error("restoring an empty stamp should fail")
	}
}

func TestCleanup(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Install([]byte("cert"), []byte("key")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteMetadata(Metadata{Domain: "example.com", Type: TypeSelfSigned}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Layout().GenConfPath(), []byte("[req]"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.Cleanup(); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{
		s.Layout().CertPath(),
		s.Layout().KeyPath(),
		s.Layout().GenConfPath(),
		s.Layout().MetadataPath(),
	} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s should be gone after cleanup", path)
		}
	}

	// Metadata is archived, not deleted
	entries, err := os.ReadDir(s.Layout().BackupDir())
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "ssl_info.") {
			found = true
		}
	}
	if !found {
		t.Error("cleanup should archive metadata into the backup directory")
	}
}

func TestCleanupEmptyStore(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Cleanup(); err != nil {
		t.Errorf("cleanup of an empty store should succeed, got %v", err)
	}
}
