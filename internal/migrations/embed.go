// AngelaMos | 2026
// embed.go

// Package migrations carries the goose SQL migrations inside the binary.
package migrations

import "embed"

// Dir is the directory inside FS that holds the migrations.
const Dir = "sql"

//go:embed sql/*.sql
var FS embed.FS
