// Package template renders the openssl-style generation config that is
// written into the SSL directory on every self-signed run. The file is an
// audit record of the Subject and SAN inputs used for generation; it also
// lets an operator regenerate the certificate manually with openssl.
package template

import (
	"bytes"
	"fmt"
	"text/template"
)

// GenConfData contains data for rendering the generation config.
type GenConfData struct {
	Domain       string
	Organization string
	KeySize      int
	DNSNames     []string
	IPAddresses  []string
}

// RenderGenConf renders the openssl.conf generation record.
func RenderGenConf(data GenConfData) (string, error) {
	if data.Organization == "" {
		data.Organization = "Milou Self-Signed"
	}

	content, err := templates.ReadFile("openssl.conf.tmpl")
	if err != nil {
		return "", fmt.Errorf("template not found: %w", err)
	}

	funcMap := template.FuncMap{
		// openssl alt_names entries are 1-indexed
		"inc": func(i int) int { return i + 1 },
	}

	tmpl, err := template.New("openssl.conf").Funcs(funcMap).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}
