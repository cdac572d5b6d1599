package postgres

import (
	"embed"
)

// Migrations holds the embedded schema migration files, applied in order at
// startup.
//
//go:embed migrations/*.up.sql
var Migrations embed.FS
