package template

import "embed"

//go:embed openssl.conf.tmpl
var templates embed.FS
