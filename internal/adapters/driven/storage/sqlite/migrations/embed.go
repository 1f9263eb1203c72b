// Package migrations holds the numbered schema files for the profile and
// chat-log tables. Files are named NNN_name.up.sql and applied in order.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
