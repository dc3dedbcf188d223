package archive

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/requake-go/requake/internal/monitoring"
)

// newMigrate builds a migrate instance bound to this archive's
// connection and embedded migration files. The returned instance is
// never Closed: the sqlite driver's Close also closes the underlying
// *sql.DB, which ArchiveProvider manages separately via Close.
func (a *ArchiveProvider) newMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("archive: opening embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(a.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("archive: creating sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("archive: creating migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// migrateUp applies all pending migrations. A fresh database starts at
// version 0 and is brought to the latest version in one call.
func (a *ArchiveProvider) migrateUp() error {
	m, err := a.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("archive: migrating up: %w", err)
	}
	return nil
}

// Version reports the archive's current schema version and whether a
// prior migration left it dirty (failed partway through).
func (a *ArchiveProvider) Version() (version uint, dirty bool, err error) {
	m, err := a.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[archive migrate] "+format, v...)
}
func (migrateLogger) Verbose() bool { return false }
