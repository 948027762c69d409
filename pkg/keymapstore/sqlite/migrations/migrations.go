// Package migrations holds the schema of the sqlite keymap store.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed *.sql
var schema embed.FS

// ErrDirty means an earlier run stopped inside a migration and the
// keymap table needs fixing by hand.
var ErrDirty = errors.New("keymap store schema is dirty")

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("wrap keymap db: %w", err)
	}

	source, err := iofs.New(schema, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}

	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}

// currentVersion is 0 for a database that has never been migrated.
func currentVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return version, fmt.Errorf("version %d: %w", version, ErrDirty)
	}
	return version, nil
}

// Migrate brings the active keymap table to the latest schema and returns
// the version it ended on. The migrator is not closed, closing it would close db.
func Migrate(db *sql.DB, log *zap.SugaredLogger) (uint, error) {
	m, err := newMigrator(db)
	if err != nil {
		return 0, err
	}

	from, err := currentVersion(m)
	if err != nil {
		return from, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return from, fmt.Errorf("upgrade keymap store from version %d: %w", from, err)
	}

	to, err := currentVersion(m)
	if err != nil {
		return from, err
	}

	if to == from {
		log.Debugw("keymap store schema is current", "version", to)
	} else {
		log.Infow("upgraded keymap store schema", "from", from, "to", to)
	}
	return to, nil
}
