package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationFiles lists the bundled migrations for a direction ("up" or
// "down") in the order they must be applied.
func MigrationFiles(direction string) ([]string, error) {
	if direction != "up" && direction != "down" {
		return nil, fmt.Errorf("unknown migration direction %q", direction)
	}
	names, err := fs.Glob(migrationFiles, "migrations/*."+direction+".sql")
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	if direction == "down" {
		slices.Reverse(names)
	}
	return names, nil
}

// Migrate applies every bundled migration for direction. The scripts are
// idempotent so re-running "up" is safe.
func Migrate(ctx context.Context, db *DB, direction string) error {
	files, err := MigrationFiles(direction)
	if err != nil {
		return err
	}
	for _, f := range files {
		data, err := migrationFiles.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		slog.Info("migration applied", "file", strings.TrimPrefix(f, "migrations/"), "direction", direction)
	}
	return nil
}
