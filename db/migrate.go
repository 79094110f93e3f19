// Package db provides an embedded filesystem containing the postgres migrations
package db

import (
	"embed"
)

// Migrations contain an embedded filesystem with all the sql migration files
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the sql files
const MigrationsDir = "migrations"
