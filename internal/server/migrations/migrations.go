// Package migrations embeds the goose SQL migrations for the mirror schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
