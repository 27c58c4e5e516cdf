// Package assets embeds the email and report templates shipped with the binary.
package assets

import "embed"

//go:embed templates
var FS embed.FS
