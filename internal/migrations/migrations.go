// Package migrations creates the Jabber archive table ("jm") for local and
// test archives. Production archives are created by the Jabber server itself.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// Dialect maps a database/sql driver name to the goose dialect and the
// migration directory inside Migrations.
func Dialect(driverName string) (dialect, dir string, err error) {
	switch driverName {
	case "sqlite", "sqlite3":
		return "sqlite3", "sqlite", nil
	case "pgx", "postgres":
		return "postgres", "postgres", nil
	default:
		return "", "", fmt.Errorf("no migrations for driver %q", driverName)
	}
}

// Up applies all migrations for the given driver.
func Up(ctx context.Context, db *sql.DB, driverName string) error {
	dialect, dir, err := Dialect(driverName)
	if err != nil {
		return err
	}

	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, dir)
}
