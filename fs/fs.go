// Package appfs embeds the database migrations inside the binary.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
