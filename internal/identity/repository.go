package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested identity or key does not exist.
var ErrNotFound = errors.New("not found")

// Repository persists identities and their issued API keys.
type Repository interface {
	CreateIdentity(ctx context.Context, id Identity) error
	FindIdentity(ctx context.Context, id string) (Identity, error)
	CreateAPIKey(ctx context.Context, key APIKey) error
	FindAPIKey(ctx context.Context, key string) (APIKey, error)
	RevokeAPIKey(ctx context.Context, key string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateIdentity inserts a new identity row.
func (r *PostgresRepository) CreateIdentity(ctx context.Context, id Identity) error {
	identityID, err := uuid.Parse(id.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO identities (id, display_name, link_limit, created_at)
        VALUES ($1, $2, $3, $4)`, identityID, id.DisplayName, id.LinkLimit, id.CreatedAt.UTC())
	return err
}

// FindIdentity fetches an identity by id.
func (r *PostgresRepository) FindIdentity(ctx context.Context, id string) (Identity, error) {
	identityID, err := uuid.Parse(id)
	if err != nil {
		return Identity{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, display_name, link_limit, created_at FROM identities WHERE id = $1`, identityID)
	var (
		rowID     uuid.UUID
		createdAt time.Time
		ident     Identity
	)
	if err := row.Scan(&rowID, &ident.DisplayName, &ident.LinkLimit, &createdAt); err != nil {
		return Identity{}, ErrNotFound
	}
	ident.ID = rowID.String()
	ident.CreatedAt = createdAt.UTC()
	return ident, nil
}

// CreateAPIKey inserts a new issued key.
func (r *PostgresRepository) CreateAPIKey(ctx context.Context, key APIKey) error {
	identityID, err := uuid.Parse(key.IdentityID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO api_keys (key, identity_id, active, issued_at)
        VALUES ($1, $2, $3, $4)`, key.Key, identityID, key.Active, key.IssuedAt.UTC())
	return err
}

// FindAPIKey fetches an issued key by its opaque value.
func (r *PostgresRepository) FindAPIKey(ctx context.Context, key string) (APIKey, error) {
	row := r.db.QueryRow(ctx, `SELECT key, identity_id, active, issued_at FROM api_keys WHERE key = $1`, key)
	var (
		identityID uuid.UUID
		issuedAt   time.Time
		rec        APIKey
	)
	if err := row.Scan(&rec.Key, &identityID, &rec.Active, &issuedAt); err != nil {
		return APIKey{}, ErrNotFound
	}
	rec.IdentityID = identityID.String()
	rec.IssuedAt = issuedAt.UTC()
	return rec, nil
}

// RevokeAPIKey deactivates an issued key.
func (r *PostgresRepository) RevokeAPIKey(ctx context.Context, key string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE api_keys SET active = FALSE WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
