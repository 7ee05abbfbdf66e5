package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"solana-sell-engine/internal/storage/postgres"
)

// RunPostgresMigrations creates the wave and wallet-result tables by
// applying all embedded SQL files in lexical order. Migrations are
// expected to be idempotent.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := sqlFiles(PostgresFS, "postgres")
	if err != nil {
		return fmt.Errorf("read embedded postgres migrations: %w", err)
	}

	for _, file := range files {
		data, err := fs.ReadFile(PostgresFS, "postgres/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		// Exec without arguments uses the simple query protocol, so a
		// file may hold multiple statements.
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}
