package store

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestMetadataRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	generated := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	err := s.WriteMetadata(Metadata{
		Domain:       "example.com",
		Type:         TypeLetsEncrypt,
		GeneratedAt:  generated,
		ValidityDays: 90,
		KeySize:      2048,
	})
	if err != nil {
		t.Fatal(err)
	}

	md, err := s.ReadMetadata()
	if err != nil {
		t.Fatal(err)
	}
	if md == nil {
		t.Fatal("expected metadata")
	}

	if md.Domain != "example.com" {
		t.Errorf("Domain = %s", md.Domain)
	}
	if md.Type != TypeLetsEncrypt {
		t.Errorf("Type = %s", md.Type)
	}
	if !md.GeneratedAt.Equal(generated) {
		t.Errorf("GeneratedAt = %s, want %s", md.GeneratedAt, generated)
	}
	if md.CertFile != s.Layout().CertPath() {
		t.Errorf("CertFile = %s, want store cert path", md.CertFile)
	}
	if md.ValidityDays != 90 || md.KeySize != 2048 {
		t.Errorf("numeric fields = %d/%d", md.ValidityDays, md.KeySize)
	}
}

func TestMetadataFileFormat(t *testing.T) {
	s := New(t.TempDir())
	if err := s.WriteMetadata(Metadata{Domain: "localhost", Type: TypeSelfSigned, KeySize: 2048, ValidityDays: 365}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Layout().MetadataPath())
	if err != nil {
		t.Fatal(err)
	}

	content := string(data)
	for _, want := range []string{"DOMAIN=localhost", "SSL_TYPE=self-signed", "VALIDITY_DAYS=365", "KEY_SIZE=2048", "GENERATED_AT="} {
		if !strings.Contains(content, want) {
			t.Errorf("metadata missing %q:\n%s", want, content)
		}
	}
}

func TestReadMetadataMissing(t *testing.T) {
	s := New(t.TempDir())
	md, err := s.ReadMetadata()
	if err != nil {
		t.Fatalf("missing metadata is not an error, got %v", err)
	}
	if md != nil {
		t.Error("missing metadata should return nil")
	}
}

func TestAcquisitionTypeValid(t *testing.T) {
	for _, typ := range []AcquisitionType{TypeSelfSigned, TypeLetsEncrypt, TypeExisting, TypePreserved} {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if AcquisitionType("bogus").Valid() {
		t.Error("bogus type should be invalid")
	}
}
