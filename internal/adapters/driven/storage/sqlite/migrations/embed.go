// Package migrations embeds SQL migration files for the document store.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
// Only *.up.sql files are applied; *.down.sql files document the rollback.
//
//go:embed *.sql
var FS embed.FS
