package database

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	dbm "github.com/prperemyshlev/storyboard-api/db"
)

// NewMigrator returns a migrate instance reading the embedded migrations and
// writing to the database at url (postgres://...). Callers must Close it.
func NewMigrator(url string) (*migrate.Migrate, error) {
	src, err := iofs.New(dbm.Migrations, dbm.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// Migrate applies every pending migration, bringing the schema to head
func Migrate(url string) error {
	m, err := NewMigrator(url)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// MigrateDown rolls back steps migrations, or all of them when steps <= 0
func MigrateDown(url string, steps int) error {
	m, err := NewMigrator(url)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	return nil
}

// MigrationVersion reports the current schema version and whether the last
// migration left the database dirty
func MigrationVersion(url string) (uint, bool, error) {
	m, err := NewMigrator(url)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(m)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}

	return version, dirty, nil
}

// ErrSchemaOutdated reports a database that is not at the latest embedded migration
var ErrSchemaOutdated = errors.New("database schema is not at the latest migration")

// LatestVersion returns the highest migration version embedded in the binary
func LatestVersion() (uint, error) {
	src, err := iofs.New(dbm.Migrations, dbm.MigrationsDir)
	if err != nil {
		return 0, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("failed to read first migration: %w", err)
	}

	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read migration after %d: %w", version, err)
		}
		version = next
	}
}

// CheckSchema returns the schema version of the database at url, or
// ErrSchemaOutdated when it is dirty or behind LatestVersion
func CheckSchema(url string) (uint, error) {
	want, err := LatestVersion()
	if err != nil {
		return 0, err
	}

	got, dirty, err := MigrationVersion(url)
	if err != nil {
		return 0, err
	}

	if dirty {
		return got, fmt.Errorf("%w: version %d is dirty", ErrSchemaOutdated, got)
	}
	if got != want {
		return got, fmt.Errorf("%w: at version %d, want %d", ErrSchemaOutdated, got, want)
	}

	return got, nil
}

func closeMigrator(m *migrate.Migrate) {
	// source and database close errors only matter for long-lived instances
	_, _ = m.Close()
}
