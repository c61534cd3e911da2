package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	tern "github.com/jackc/tern/v2/migrate"
	"github.com/pkg/errors"

	"github.com/deppfellow/anime-api/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date. Postgres uses tern with the embedded
// migration files; sqlite uses the inline schema tracked by PRAGMA user_version.
func (db *Database) Migrate(ctx context.Context) error {
	switch db.Driver {
	case config.DriverPostgres:
		return db.migratePostgres(ctx)
	case config.DriverSQLite:
		return db.migrateSQLite(ctx)
	default:
		return fmt.Errorf("unsupported database driver %q", db.Driver)
	}
}

func (db *Database) migratePostgres(ctx context.Context) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring migration connection: %w", err)
	}
	defer conn.Release()

	m, err := tern.NewMigrator(ctx, conn.Conn(), "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return err
	}

	if from == int32(len(m.Migrations)) {
		db.log.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		db.log.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}

const sqliteSchema = `
CREATE TABLE animes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL CHECK (name <> '')
);

CREATE INDEX idx_animes_name ON animes (name);

CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    username TEXT NOT NULL,
    password TEXT NOT NULL,
    authorities TEXT NOT NULL DEFAULT 'ROLE_USER',
    CONSTRAINT users_username_key UNIQUE (username)
);
`

// sqliteMigrations[i] upgrades version i to i+1. Index 0 is covered by
// sqliteSchema.
var sqliteMigrations = []string{
	"",
}

func (db *Database) migrateSQLite(ctx context.Context) error {
	var version int
	if err := db.DB.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return errors.Wrap(err, "failed to query schema version")
	}

	target := len(sqliteMigrations)
	if version == target {
		db.log.Info().Msgf("database schema up to date, version %d", version)
		return nil
	} else if version > target {
		return errors.Errorf("database schema version (%d) is newer than supported (%d)", version, target)
	}

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if version == 0 {
		if _, err := tx.ExecContext(ctx, sqliteSchema); err != nil {
			return errors.Wrap(err, "failed to initialize schema")
		}
	} else {
		for i := version; i < target; i++ {
			if sqliteMigrations[i] == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, sqliteMigrations[i]); err != nil {
				return errors.Wrapf(err, "failed to execute migration #%d", i)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target)); err != nil {
		return errors.Wrap(err, "failed to bump schema version")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit schema")
	}

	db.log.Info().Msgf("migrated database schema, from %d to %d", version, target)
	return nil
}
