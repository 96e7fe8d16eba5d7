package sqlassets

import "embed"

// Migrations holds the goose migrations applied by `cli migrate up` and the store integration tests.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads.
const MigrationsDir = "migrations"
