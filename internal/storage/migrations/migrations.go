// Package migrations embeds the SQL schema for the SQLite storage backend.
package migrations

import "embed"

// FS holds the goose migration files.
//
//go:embed *.sql
var FS embed.FS
