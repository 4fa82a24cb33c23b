// Package schema embeds the goose migrations for the genealogy tables.
package schema

import "embed"

//go:embed *.sql
var FS embed.FS
