package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"amlscreen/internal/domain"
	"amlscreen/pkg/errors"

	"github.com/google/uuid"
)

// APIKeyRepository defines storage operations for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	List(ctx context.Context) ([]domain.APIKey, error)
	GetByKeyHash(ctx context.Context, hash string) (*domain.APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
}

type APIKeyService struct {
	repo APIKeyRepository
}

func NewAPIKeyService(repo APIKeyRepository) *APIKeyService {
	return &APIKeyService{repo: repo}
}

const keyPrefix = "aml_live_"

// CreateKey generates a new API key. The raw key is returned exactly once;
// only its sha256 hash is stored.
func (s *APIKeyService) CreateKey(ctx context.Context, name string) (*domain.APIKey, string, error) {
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, "", errors.Wrap(err, "failed to generate random bytes")
	}

	rawKey := keyPrefix + hex.EncodeToString(keyBytes)

	hash := sha256.Sum256([]byte(rawKey))
	apiKey := &domain.APIKey{
		ID:        uuid.New(),
		Name:      name,
		KeyPrefix: rawKey[:len(keyPrefix)+1],
		KeyHash:   hex.EncodeToString(hash[:]),
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, apiKey); err != nil {
		return nil, "", err
	}
	return apiKey, rawKey, nil
}

func (s *APIKeyService) ListKeys(ctx context.Context) ([]domain.APIKey, error) {
	return s.repo.List(ctx)
}

func (s *APIKeyService) RevokeKey(ctx context.Context, id uuid.UUID) error {
	return s.repo.Revoke(ctx, id)
}

// ValidateKey resolves a raw key to its stored record.
func (s *APIKeyService) ValidateKey(ctx context.Context, rawKey string) (*domain.APIKey, error) {
	hash := sha256.Sum256([]byte(rawKey))
	keyHash := hex.EncodeToString(hash[:])

	key, err := s.repo.GetByKeyHash(ctx, keyHash)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, errors.ErrInvalidAPIKey
	}
	if !key.IsActive {
		return nil, errors.ErrAPIKeyRevoked
	}

	// Async update last used
	go func() {
		_ = s.repo.UpdateLastUsed(context.Background(), key.ID)
	}()

	return key, nil
}
