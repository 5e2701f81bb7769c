package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements MemberStore using PostgreSQL.
type PostgresStore struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// NewPostgresStore creates a MemberStore backed by the members table.
// queryTimeout sets the per-query context deadline; zero means no timeout.
func NewPostgresStore(pool *pgxpool.Pool, queryTimeout time.Duration) *PostgresStore {
	return &PostgresStore{
		pool:         pool,
		queryTimeout: queryTimeout,
	}
}

// withTimeout derives a child context with the configured query timeout.
// If queryTimeout is zero, the parent context is returned unchanged.
func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout > 0 {
		return context.WithTimeout(ctx, s.queryTimeout)
	}
	return ctx, func() {}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *PostgresStore) FindByAppIDAndEmail(ctx context.Context, appID, email string) (*Member, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT app_id, email, doc_id, created_at
		FROM %s
		WHERE app_id = $1 AND email = $2
	`, MembersTable)

	var m Member
	err := s.pool.QueryRow(ctx, query, appID, normalizeEmail(email)).
		Scan(&m.AppID, &m.Email, &m.DocID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) PutMember(ctx context.Context, m Member) (*Member, error) {
	if m.AppID == "" || m.Email == "" || m.DocID == "" {
		return nil, fmt.Errorf("put member: app_id, email and doc_id are required")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (app_id, email, doc_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (app_id, email) DO UPDATE SET doc_id = EXCLUDED.doc_id
		RETURNING app_id, email, doc_id, created_at
	`, MembersTable)

	var out Member
	err := s.pool.QueryRow(ctx, query, m.AppID, normalizeEmail(m.Email), m.DocID).
		Scan(&out.AppID, &out.Email, &out.DocID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("put member: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) DeleteMember(ctx context.Context, appID, email string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE app_id = $1 AND email = $2`, MembersTable)
	tag, err := s.pool.Exec(ctx, query, appID, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, appID string) ([]Member, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT app_id, email, doc_id, created_at
		FROM %s
		WHERE app_id = $1
		ORDER BY email
	`, MembersTable)

	rows, err := s.pool.Query(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.AppID, &m.Email, &m.DocID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members rows: %w", err)
	}
	return members, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
