// Package views holds the dashboard's HTML templates.
package views

import "embed"

//go:embed *.html
var TemplatesFS embed.FS
