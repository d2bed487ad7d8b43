package persistence

import (
	"embed"
	"io/fs"
)

//go:embed migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the migration files for driver
func GetMigrationsFS(driver string) (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations/"+driver)
}
