package acquire

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milou-sh/milou-cli/internal/ca"
	milouerrors "github.com/milou-sh/milou-cli/internal/errors"
	"github.com/milou-sh/milou-cli/internal/store"
	"github.com/milou-sh/milou-cli/internal/validate"
)

// writeSourcePair mints a real pair and writes it under the given names.
func writeSourcePair(t *testing.T, dir, certName, keyName string) {
	t.Helper()

	certPEM, keyPEM, err := ca.NewX509Authority().SelfSign(ca.Request{Domain: "example.com", KeySize: 1024, ValidityDays: 30})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, certName), certPEM, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, keyName), keyPEM, 0600); err != nil {
		t.Fatal(err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("placeholder"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveSourceDirectory(t *testing.T) {
	t.Run("letsencrypt layout wins over stray files", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "fullchain.pem"))
		touch(t, filepath.Join(dir, "privkey.pem"))
		touch(t, filepath.Join(dir, "server.crt"))

		cert, key, err := ResolveSource(dir)
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(cert) != "fullchain.pem" || filepath.Base(key) != "privkey.pem" {
			t.Errorf("resolved %s/%s, want fullchain.pem/privkey.pem", cert, key)
		}
	})

	t.Run("cert.pem layout", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "cert.pem"))
		touch(t, filepath.Join(dir, "privkey.pem"))

		cert, key, err := ResolveSource(dir)
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(cert) != "cert.pem" || filepath.Base(key) != "privkey.pem" {
			t.Errorf("resolved %s/%s", cert, key)
		}
	})

	t.Run("basename-matched fallback", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "server.crt"))
		touch(t, filepath.Join(dir, "server.key"))

		cert, key, err := ResolveSource(dir)
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(cert) != "server.crt" || filepath.Base(key) != "server.key" {
			t.Errorf("resolved %s/%s", cert, key)
		}
	})

	t.Run("unpaired certificate does not mask a later pairing", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "cert.crt"))
		touch(t, filepath.Join(dir, "server.crt"))
		touch(t, filepath.Join(dir, "server.key"))

		cert, key, err := ResolveSource(dir)
		if err != nil {
			t.Fatalf("the server pair should resolve: %v", err)
		}
		if filepath.Base(cert) != "server.crt" || filepath.Base(key) != "server.key" {
			t.Errorf("resolved %s/%s, want server.crt/server.key", cert, key)
		}
	})

	t.Run("certificate without key is ambiguous", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "ssl.crt"))

		_, _, err := ResolveSource(dir)
		if !milouerrors.Is(err, milouerrors.ErrSourceNotFound) {
			t.Errorf("expected SOURCE error, got %v", err)
		}
	})

	t.Run("empty directory names supported formats", func(t *testing.T) {
		_, _, err := ResolveSource(t.TempDir())
		if err == nil {
			t.Fatal("expected resolution failure")
		}
		if !milouerrors.Is(err, milouerrors.ErrSourceNotFound) {
			t.Errorf("expected SOURCE error, got %v", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		_, _, err := ResolveSource(filepath.Join(t.TempDir(), "nope"))
		if !milouerrors.Is(err, milouerrors.ErrSourceNotFound) {
			t.Errorf("expected SOURCE error, got %v", err)
		}
	})
}

func TestResolveSourceFile(t *testing.T) {
	t.Run("extension swap", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "mysite.crt"))
		touch(t, filepath.Join(dir, "mysite.key"))

		cert, key, err := ResolveSource(filepath.Join(dir, "mysite.crt"))
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(cert) != "mysite.crt" || filepath.Base(key) != "mysite.key" {
			t.Errorf("resolved %s/%s", cert, key)
		}
	})

	t.Run("fullchain file finds privkey sibling", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "fullchain.pem"))
		touch(t, filepath.Join(dir, "privkey.pem"))

		_, key, err := ResolveSource(filepath.Join(dir, "fullchain.pem"))
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(key) != "privkey.pem" {
			t.Errorf("key = %s", key)
		}
	})

	t.Run("no peer key", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "lonely.crt"))

		_, _, err := ResolveSource(filepath.Join(dir, "lonely.crt"))
		if !milouerrors.Is(err, milouerrors.ErrSourceNotFound) {
			t.Errorf("expected SOURCE error, got %v", err)
		}
	})
}

func TestImportedAcquire(t *testing.T) {
	t.Run("valid source is copied", func(t *testing.T) {
		src := t.TempDir()
		writeSourcePair(t, src, "fullchain.pem", "privkey.pem")

		s := store.New(t.TempDir())
		strategy := &Imported{Store: s, Source: src}

		if err := strategy.Acquire("example.com"); err != nil {
			t.Fatalf("Acquire: %v", err)
		}

		report := validate.FullCheck(s.Layout().CertPath(), s.Layout().KeyPath(), "example.com", 7)
		if !report.Passed {
			t.Errorf("imported pair should validate, problems: %v", report.Problems)
		}
	})

	t.Run("unparseable source never reaches the store", func(t *testing.T) {
		src := t.TempDir()
		touch(t, filepath.Join(src, "fullchain.pem"))
		touch(t, filepath.Join(src, "privkey.pem"))

		s := store.New(t.TempDir())
		strategy := &Imported{Store: s, Source: src}

		if err := strategy.Acquire("example.com"); err == nil {
			t.Fatal("garbage source should fail validation")
		}
		if s.Exists() {
			t.Error("store must stay empty when the source fails validation")
		}
	})

	t.Run("missing source path", func(t *testing.T) {
		strategy := &Imported{Store: store.New(t.TempDir()), Source: "/does/not/exist"}
		if err := strategy.Acquire("example.com"); !milouerrors.Is(err, milouerrors.ErrSourceNotFound) {
			t.Errorf("expected SOURCE error, got %v", err)
		}
	})

	t.Run("empty source path", func(t *testing.T) {
		strategy := &Imported{Store: store.New(t.TempDir())}
		if err := strategy.Acquire("example.com"); err == nil {
			t.Error("empty source should be rejected")
		}
	})
}
