package auth

import (
	"context"
	"testing"
	"time"

	"amlscreen/internal/domain"
	"amlscreen/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func testUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           uuid.New(),
		Email:        "analyst@example.com",
		PasswordHash: string(hash),
		Role:         "analyst",
		CreatedAt:    time.Now(),
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := new(MockUserRepo)
	user := testUser(t, "correct-horse")
	repo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("UpdateLastLogin", mock.Anything, user.ID, mock.Anything).Return(nil)

	svc := NewService(repo, "secret", time.Hour)
	resp, err := svc.Login(context.Background(), &LoginRequest{Email: user.Email, Password: "correct-horse"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)
	require.NotNil(t, resp.User.LastLoginAt)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockUserRepo)
	user := testUser(t, "correct-horse")
	repo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := NewService(repo, "secret", time.Hour)
	_, err := svc.Login(context.Background(), &LoginRequest{Email: user.Email, Password: "wrong"})

	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, errors.New("not found"))

	svc := NewService(repo, "secret", time.Hour)
	_, err := svc.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "x"})

	// Unknown email and wrong password are indistinguishable.
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := new(MockUserRepo)
	user := testUser(t, "pw")
	repo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("UpdateLastLogin", mock.Anything, user.ID, mock.Anything).Return(nil)

	svc := NewService(repo, "secret", time.Hour)
	resp, err := svc.Login(context.Background(), &LoginRequest{Email: user.Email, Password: "pw"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, "analyst", claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	repo := new(MockUserRepo)
	user := testUser(t, "pw")
	repo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("UpdateLastLogin", mock.Anything, user.ID, mock.Anything).Return(nil)

	issuer := NewService(repo, "secret-a", time.Hour)
	resp, err := issuer.Login(context.Background(), &LoginRequest{Email: user.Email, Password: "pw"})
	require.NoError(t, err)

	verifier := NewService(repo, "secret-b", time.Hour)
	_, err = verifier.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestValidateTokenExpired(t *testing.T) {
	repo := new(MockUserRepo)
	user := testUser(t, "pw")
	repo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("UpdateLastLogin", mock.Anything, user.ID, mock.Anything).Return(nil)

	svc := NewService(repo, "secret", -time.Minute)
	resp, err := svc.Login(context.Background(), &LoginRequest{Email: user.Email, Password: "pw"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, errors.ErrTokenExpired)
}

type MockKeyRepo struct{ mock.Mock }

func (m *MockKeyRepo) Create(ctx context.Context, key *domain.APIKey) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockKeyRepo) List(ctx context.Context) ([]domain.APIKey, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.APIKey), args.Error(1)
}

func (m *MockKeyRepo) GetByKeyHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockKeyRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockKeyRepo) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestCreateAndValidateKey(t *testing.T) {
	repo := new(MockKeyRepo)
	var stored *domain.APIKey
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.APIKey)
	}).Return(nil)

	svc := NewAPIKeyService(repo)
	created, rawKey, err := svc.CreateKey(context.Background(), "ci-pipeline")

	require.NoError(t, err)
	assert.True(t, len(rawKey) > 40)
	assert.Contains(t, rawKey, "aml_live_")
	assert.NotContains(t, created.KeyHash, rawKey)
	assert.True(t, created.IsActive)

	repo.On("GetByKeyHash", mock.Anything, stored.KeyHash).Return(stored, nil)
	repo.On("UpdateLastUsed", mock.Anything, stored.ID).Return(nil)

	got, err := svc.ValidateKey(context.Background(), rawKey)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestValidateKeyRevoked(t *testing.T) {
	repo := new(MockKeyRepo)
	key := &domain.APIKey{ID: uuid.New(), KeyHash: "h", IsActive: false}
	repo.On("GetByKeyHash", mock.Anything, mock.Anything).Return(key, nil)

	svc := NewAPIKeyService(repo)
	_, err := svc.ValidateKey(context.Background(), "aml_live_whatever")

	assert.ErrorIs(t, err, errors.ErrAPIKeyRevoked)
}

func TestValidateKeyUnknown(t *testing.T) {
	repo := new(MockKeyRepo)
	repo.On("GetByKeyHash", mock.Anything, mock.Anything).Return(nil, nil)

	svc := NewAPIKeyService(repo)
	_, err := svc.ValidateKey(context.Background(), "aml_live_nope")

	assert.ErrorIs(t, err, errors.ErrInvalidAPIKey)
}
