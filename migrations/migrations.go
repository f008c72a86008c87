// Package migrations embeds the SQL schema migrations so binaries don't
// depend on the working directory at deploy time.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
