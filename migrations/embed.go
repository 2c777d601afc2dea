// Package migrations хранит SQL миграции хранилища графов
package migrations

import "embed"

// PostgresMigrations миграции для PostgreSQL, каталог "postgres"
//
//go:embed postgres/*.sql
var PostgresMigrations embed.FS
