package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"

	"momo-telegram/db"
)

// Embedded so `momo-telegram migrate` works from any directory.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

func migrationNames() ([]string, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// applyMigrations runs every file in order. Each file is written to be re-runnable.
func applyMigrations(ctx context.Context, verbose bool) error {
	names, err := migrationNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		sqlBytes, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if verbose {
			log.Printf("migration %s applied", name)
		}
	}
	return nil
}
