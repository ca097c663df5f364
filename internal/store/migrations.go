package store

import (
	"embed"
	"io/fs"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/persistence/sqldb"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrations returns the event schema, one directory per dialect.
func Migrations() *sqldb.MigrationSource {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return &sqldb.MigrationSource{FS: sub}
}
