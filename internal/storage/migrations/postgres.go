package migrations

import (
	"context"
	"fmt"

	"wallet-feature-lab/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded PostgreSQL schema.
// Every file uses IF NOT EXISTS, so reruns are no-ops.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := Load(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, m := range files {
		// pgx runs a multi-statement string as one simple-protocol batch.
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}
