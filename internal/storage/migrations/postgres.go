package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"solana-price-chart/internal/storage/postgres"
)

// Migration is one embedded schema file of the token pool catalog.
type Migration struct {
	Name string
	SQL  string
}

// PostgresMigrations returns the non-empty embedded migrations ordered by
// file name.
func PostgresMigrations() ([]Migration, error) {
	names, err := fs.Glob(PostgresFS, "postgres/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list postgres migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(PostgresFS, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		sql := strings.TrimSpace(string(data))
		if sql == "" {
			continue
		}
		migrations = append(migrations, Migration{Name: path.Base(name), SQL: sql})
	}
	return migrations, nil
}

// RunPostgresMigrations creates or updates the token pool catalog schema.
// Every migration must be safe to re-run on each start.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	migrations, err := PostgresMigrations()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}
