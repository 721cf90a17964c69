// Package db embeds the SQL migrations for the cure-contributors store.
package db

import "embed"

// Migrations holds the golang-migrate files under sqlite/.
//
//go:embed sqlite/*.sql
var Migrations embed.FS

// MigrationsPath is the directory inside Migrations holding the files.
const MigrationsPath = "sqlite"
