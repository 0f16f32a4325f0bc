// Package migrations embeds the versioned schema so binaries can migrate
// without shipping the SQL files next to them.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
