// Package migrations embeds the SQL schema and applies it in file name
// order. Applied files are recorded in schema_migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"github.com/leporo/sqlf"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

//go:embed *.sql
var FS embed.FS

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name       TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Files lists the embedded migrations in the order they are applied.
func Files(fsys fs.FS) ([]string, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply runs every migration of fsys that is not recorded yet, each one in
// its own transaction. It returns the names it applied.
func Apply(ctx context.Context, db *sql.DB, fsys fs.FS, logger *slog.Logger) ([]string, error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied, err := appliedNames(ctx, db)
	if err != nil {
		return nil, err
	}

	names, err := Files(fsys)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, name := range names {
		if applied[name] {
			continue
		}
		if err := applyOne(ctx, db, fsys, name); err != nil {
			return done, fmt.Errorf("migration %s: %w", name, err)
		}
		logger.Info("migration applied", slog.String("name", name))
		done = append(done, name)
	}
	return done, nil
}

func appliedNames(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	applied := make(map[string]bool)
	var name string
	err := sqlf.From("schema_migrations").
		Select("name").To(&name).
		QueryAndClose(ctx, db, func(rows *sql.Rows) {
			applied[name] = true
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	return applied, nil
}

func applyOne(ctx context.Context, db *sql.DB, fsys fs.FS, name string) error {
	body, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(body)) == "" {
		return fmt.Errorf("empty migration")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return err
	}
	if _, err := sqlf.InsertInto("schema_migrations").Set("name", name).ExecAndClose(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}
