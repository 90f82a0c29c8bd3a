// Package database opens the application database and applies the
// embedded schema migrations.
package database

import (
	"context"
	"database/sql"
	"embed"

	goerrors "github.com/goliatone/go-errors"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Connect opens a sqlite database for the given DSN
func Connect(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to open database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := db.Ping(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to ping database")
	}

	return db, nil
}

// Migrate brings the schema up to date. Goose records applied versions
// in its bookkeeping table, so each migration runs exactly once.
func Migrate(ctx context.Context, db *bun.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to configure migrations")
	}

	if err := goose.UpContext(ctx, db.DB, "migrations"); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to apply migrations")
	}

	return nil
}
