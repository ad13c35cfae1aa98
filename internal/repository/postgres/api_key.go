package postgres

import (
	"context"
	"database/sql"
	"time"

	"amlscreen/internal/domain"
	"amlscreen/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type APIKeyRepository struct {
	db *sqlx.DB
}

func NewAPIKeyRepository(db *sqlx.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	query := `
		INSERT INTO api_keys (
			id, name, key_prefix, key_hash, is_active, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		key.ID, key.Name, key.KeyPrefix, key.KeyHash, key.IsActive, key.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create api key")
	}
	return nil
}

func (r *APIKeyRepository) List(ctx context.Context) ([]domain.APIKey, error) {
	query := `
		SELECT id, name, key_prefix, key_hash, is_active, created_at, last_used_at
		FROM api_keys
		ORDER BY created_at DESC
	`

	var keys []domain.APIKey
	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, errors.Wrap(err, "failed to list api keys")
	}
	return keys, nil
}

func (r *APIKeyRepository) GetByKeyHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	query := `
		SELECT id, name, key_prefix, key_hash, is_active, created_at, last_used_at
		FROM api_keys
		WHERE key_hash = $1
	`

	var key domain.APIKey
	err := r.db.GetContext(ctx, &key, query, hash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get api key")
	}
	return &key, nil
}

func (r *APIKeyRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE api_keys
		SET is_active = false
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return errors.Wrap(err, "failed to revoke api key")
	}
	return nil
}

func (r *APIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE api_keys
		SET last_used_at = $1
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}
