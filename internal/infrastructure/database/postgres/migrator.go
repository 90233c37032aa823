package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// The schema ships inside the binary, so an API replica never depends on a
// migrations directory being mounted next to it.
//
//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// applied treats "nothing to do" as success.
func applied(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Migrate brings the schema up to date over the open pool.  The API calls it
// at start-up when database.auto_migrate is set.
func (c *Connection) Migrate() error {
	src, err := iofs.New(migrationFiles, migrationsDir)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to open embedded migrations")
	}
	driver, err := migratepg.WithInstance(c.db, &migratepg.Config{})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to create migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to create migrate instance")
	}

	if err := applied(m.Up()); err != nil {
		at, _, _ := m.Version()
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError,
			fmt.Sprintf("failed to run migrations (current version: %d)", at))
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		c.logger.Warn("Failed to get migration version", logging.Err(err))
	}
	c.logger.Info("Database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// withMigrator runs fn against a migrator opened on dbURL.
func withMigrator(dbURL string, fn func(*migrate.Migrate) error) error {
	src, err := iofs.New(migrationFiles, migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()
	return fn(m)
}

// RunMigrations applies every pending migration to the database at dbURL.
func RunMigrations(dbURL string) error {
	return withMigrator(dbURL, func(m *migrate.Migrate) error {
		if err := applied(m.Up()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	})
}

// RollbackMigration reverts steps migrations.
func RollbackMigration(dbURL string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}
	return withMigrator(dbURL, func(m *migrate.Migrate) error {
		err := m.Steps(-steps)
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}
		if err != nil {
			return fmt.Errorf("failed to rollback %d step(s): %w", steps, err)
		}
		return nil
	})
}

// MigrationStatus is the applied version, 0 before the first migration, and
// whether an interrupted run left the schema dirty.
func MigrationStatus(dbURL string) (version uint, dirty bool, err error) {
	err = withMigrator(dbURL, func(m *migrate.Migrate) error {
		var verr error
		version, dirty, verr = m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			version, dirty = 0, false
			return nil
		}
		if verr != nil {
			return fmt.Errorf("failed to get migration version: %w", verr)
		}
		return nil
	})
	return version, dirty, err
}

//Personal.AI order the ending
