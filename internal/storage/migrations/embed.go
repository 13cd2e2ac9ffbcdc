// Package migrations embeds the SQLite schema for the match ledger.
package migrations

import "embed"

// FS holds the ordered *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
