package sqldb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// MigrationSource holds embedded migration files with one directory per
// dialect ("sqlite", "postgres").
type MigrationSource struct {
	FS fs.FS
}

// Migrate applies every pending up migration for the database's dialect.
func Migrate(ctx context.Context, db *DB, src MigrationSource, log *zap.Logger) error {
	dialect := string(db.Dialect())
	log.Info("Running database migrations...", zap.String("dialect", dialect))

	sourceDriver, err := iofs.New(src.FS, dialect)
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	dbDriver, release, err := migrationDriver(ctx, db)
	if err != nil {
		_ = sourceDriver.Close()
		return err
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dialect, dbDriver)
	if err != nil {
		_ = sourceDriver.Close()
		release()
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	// m.Close would close the shared *sql.DB, so only the source and the
	// dedicated connection are released.
	defer func() {
		if err := sourceDriver.Close(); err != nil {
			log.Warn("Failed to close migrator source", zap.Error(err))
		}
		release()
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Database is up to date, no migrations needed")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, versionErr := m.Version()
	if versionErr != nil {
		log.Warn("Failed to get migration version", zap.Error(versionErr))
	}
	log.Info("Migrations applied successfully",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

func migrationDriver(ctx context.Context, db *DB) (database.Driver, func(), error) {
	switch db.Dialect() {
	case DialectSQLite:
		driver, err := sqlite.WithInstance(db.SQL(), &sqlite.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create migration db driver: %w", err)
		}
		return driver, func() {}, nil
	case DialectPostgres:
		conn, err := db.SQL().Conn(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to acquire migration connection: %w", err)
		}
		driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("failed to create migration db driver: %w", err)
		}
		return driver, func() { _ = driver.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("no migration driver for dialect %q", db.Dialect())
	}
}
