package linking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists (identity, external account) links. Implementations need not
// serialize callers; the Registry owns per-identity mutual exclusion.
type Store interface {
	IsLinked(ctx context.Context, identityID, externalAccountID string) (bool, error)
	Count(ctx context.Context, identityID string) (int, error)
	Add(ctx context.Context, identityID, externalAccountID string) error
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed link store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// IsLinked reports whether the pair is already recorded.
func (s *PostgresStore) IsLinked(ctx context.Context, identityID, externalAccountID string) (bool, error) {
	id, err := uuid.Parse(identityID)
	if err != nil {
		return false, err
	}
	var exists bool
	row := s.db.QueryRow(ctx, `SELECT EXISTS (
        SELECT 1 FROM account_links WHERE identity_id = $1 AND external_account_id = $2)`, id, externalAccountID)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Count returns how many external accounts the identity has linked.
func (s *PostgresStore) Count(ctx context.Context, identityID string) (int, error) {
	id, err := uuid.Parse(identityID)
	if err != nil {
		return 0, err
	}
	var count int
	row := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM account_links WHERE identity_id = $1`, id)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Add records the pair. The primary key on (identity_id, external_account_id)
// makes duplicate inserts fail rather than double-count.
func (s *PostgresStore) Add(ctx context.Context, identityID, externalAccountID string) error {
	id, err := uuid.Parse(identityID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO account_links (identity_id, external_account_id, created_at)
        VALUES ($1, $2, $3)`, id, externalAccountID, time.Now().UTC())
	return err
}
