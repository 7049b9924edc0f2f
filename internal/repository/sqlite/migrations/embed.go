// Package migrations holds the SQLite schema and a small runner that applies
// it in filename order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
