package template

import (
	"strings"
	"testing"
)

func TestRenderGenConf(t *testing.T) {
	out, err := RenderGenConf(GenConfData{
		Domain:      "shop.example.com",
		KeySize:     2048,
		DNSNames:    []string{"shop.example.com", "localhost", "*.example.com"},
		IPAddresses: []string{"127.0.0.1"},
	})
	if err != nil {
		t.Fatalf("RenderGenConf: %v", err)
	}

	for _, want := range []string{
		"default_bits = 2048",
		"CN = shop.example.com",
		"O = Milou Self-Signed",
		"DNS.1 = shop.example.com",
		"DNS.2 = localhost",
		"DNS.3 = *.example.com",
		"IP.1 = 127.0.0.1",
		"subjectAltName = @alt_names",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered config missing %q:\n%s", want, out)
		}
	}
}

func TestRenderGenConfCustomOrganization(t *testing.T) {
	out, err := RenderGenConf(GenConfData{
		Domain:       "localhost",
		Organization: "Acme Deployments",
		KeySize:      4096,
		DNSNames:     []string{"localhost"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "O = Acme Deployments") {
		t.Errorf("custom organization not rendered:\n%s", out)
	}
}
