package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/task-service/internal/config"
	"github.com/spec-kit/task-service/internal/domain"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// fakeUserRepo is an in-memory UserRepository with the same conditional
// update semantics as the SQL implementation.
type fakeUserRepo struct {
	users  map[string]*domain.User // keyed by id
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.nextID++
	user.ID = "user-" + strconv.Itoa(f.nextID)
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserRepo) SetRefreshToken(_ context.Context, id string, token string) error {
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.RefreshToken = &token
	return nil
}

func (f *fakeUserRepo) RotateRefreshToken(_ context.Context, id, presented, next string) error {
	user, ok := f.users[id]
	if !ok || user.RefreshToken == nil || *user.RefreshToken != presented {
		return pgx.ErrNoRows
	}
	user.RefreshToken = &next
	return nil
}

func (f *fakeUserRepo) ClearRefreshTokenByValue(_ context.Context, token string) error {
	for _, user := range f.users {
		if user.RefreshToken != nil && *user.RefreshToken == token {
			user.RefreshToken = nil
		}
	}
	return nil
}

func newTestAuthService(repo *fakeUserRepo) *AuthService {
	cfg := config.AuthConfig{
		AccessSecret:          "test-access-secret",
		RefreshSecret:         "test-refresh-secret",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLHours:  720,
		BcryptCost:            bcrypt.MinCost,
	}
	return NewAuthService(cfg, repo, zap.NewNop())
}

func registerAlice(t *testing.T, svc *AuthService) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@x.com",
		Password:  "pw123",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	user := registerAlice(t, svc)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)

	loggedIn, pair, err := svc.Login(context.Background(), "alice@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// The access token decodes to the same identity.
	claims, err := svc.TokenManager().VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)

	// Login persisted the refresh token.
	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, pair.RefreshToken, *stored.RefreshToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	registerAlice(t, svc)
	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@x.com",
		Password:  "other",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
	assert.Len(t, repo.users, 1)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)
	registerAlice(t, svc)

	_, _, errUnknown := svc.Login(context.Background(), "nobody@x.com", "pw123")
	_, _, errWrongPw := svc.Login(context.Background(), "alice@x.com", "bad")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	assert.Equal(t, apperrors.ToDomainError(errUnknown).Code, apperrors.ToDomainError(errWrongPw).Code)
	assert.Equal(t, apperrors.ToDomainError(errUnknown).HTTPStatus, apperrors.ToDomainError(errWrongPw).HTTPStatus)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)
	registerAlice(t, svc)

	_, pair, err := svc.Login(context.Background(), "alice@x.com", "pw123")
	require.NoError(t, err)

	original := pair.RefreshToken

	// First refresh succeeds and rotates.
	_, next, err := svc.Refresh(context.Background(), original)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)
	assert.NotEqual(t, original, next.RefreshToken)

	// Replaying the rotated-out token fails even though its signature is valid.
	_, _, err = svc.Refresh(context.Background(), original)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	// The new token still works.
	_, _, err = svc.Refresh(context.Background(), next.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsForgedToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	_, _, err := svc.Refresh(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestLogout(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)
	user := registerAlice(t, svc)

	// No token presented: success, no state change.
	require.NoError(t, svc.Logout(context.Background(), ""))

	_, pair, err := svc.Login(context.Background(), "alice@x.com", "pw123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.RefreshToken))

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)

	// The orphaned token no longer refreshes.
	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	// Logout with a token matching no record still succeeds.
	assert.NoError(t, svc.Logout(context.Background(), pair.RefreshToken))
}
