package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MembersTable holds application memberships.
const MembersTable = "members"

// RunMigrations creates the members table and its indexes.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			app_id     TEXT NOT NULL,
			email      TEXT NOT NULL,
			doc_id     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),

			PRIMARY KEY (app_id, email)
		);

		CREATE INDEX IF NOT EXISTS idx_%s_email
			ON %s (email);
	`, MembersTable, MembersTable, MembersTable)

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate members: %w", err)
	}
	return nil
}
