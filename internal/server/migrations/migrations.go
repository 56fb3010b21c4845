// Package migrations embeds the goose migrations of the SQL object store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
