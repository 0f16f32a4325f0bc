package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/tournament-tracker/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DSN builds the go-sqlite3 connection string for path. Write transactions
// take the lock up front so read-modify-write units are serialized.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on", path)
}

// Open connects to the SQLite database at path. The path is passed in
// explicitly; nothing here falls back to a package-level default.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", path, err)
	}

	slog.Info("database connected", "path", path)
	return db, nil
}

// RunMigrations applies the embedded migrations. An up-to-date schema is not
// an error.
func RunMigrations(db *sqlx.DB) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		slog.Info("database migrated", "version", version, "dirty", dirty)
	}
	return nil
}
