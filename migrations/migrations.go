// Package migrations embeds anchorkit's SQL migrations so host applications
// can apply them from their own migration phase (see the migrate package).
package migrations

import "embed"

//go:embed postgres
var Postgres embed.FS
