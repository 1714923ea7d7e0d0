// Package migrations embeds the SQL schema migrations for the Postgres
// document store.
package migrations

import "embed"

// FS contains the migration files, named NNNN_description.sql and applied
// in lexical order.
//
//go:embed *.sql
var FS embed.FS
