// Package migrations содержит SQL миграции для каждого поддерживаемого диалекта
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Каталоги миграций внутри FS
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
