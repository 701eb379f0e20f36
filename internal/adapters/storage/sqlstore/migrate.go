package sqlstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate aplica todas las migraciones pendientes. Usa su propia conexión porque
// migrate la cierra al terminar.
func Migrate(driver, dsn string) error {
	db, err := Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("migrate: open: %w", err)
	}

	m, err := newMigrate(driver, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}

// Version devuelve la versión aplicada; 0 si no hay ninguna.
func Version(driver, dsn string) (uint, bool, error) {
	db, err := Open(driver, dsn)
	if err != nil {
		return 0, false, fmt.Errorf("migrate: open: %w", err)
	}
	m, err := newMigrate(driver, db)
	if err != nil {
		_ = db.Close()
		return 0, false, err
	}
	defer m.Close()

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrate: version: %w", err)
	}
	return v, dirty, nil
}

func newMigrate(driver string, db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrate: source: %w", err)
	}

	var drv database.Driver
	switch driver {
	case DriverPostgres:
		drv, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	case DriverSQLite:
		drv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("migrate: driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, drv)
	if err != nil {
		return nil, fmt.Errorf("migrate: init: %w", err)
	}
	return m, nil
}
