// Package migrations carries the SQL schema migrations compiled into
// the binaries. Files apply in lexical order at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
