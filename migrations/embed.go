// Package migrations holds the PostgreSQL schema migrations, embedded so the
// binaries and tests do not depend on the working directory.
package migrations

import "embed"

// FS contains every *.sql migration in this directory
//
//go:embed *.sql
var FS embed.FS
