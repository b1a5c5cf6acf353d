package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/task-service/internal/domain"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager(
		"test-access-secret-long-enough-for-hs256",
		"test-refresh-secret-long-enough-for-hs256",
		15*time.Minute,
		30*24*time.Hour,
	)
}

func TestTokenManager_GenerateAndVerify(t *testing.T) {
	tm := newTestTokenManager()
	identity := Identity{ID: "user-1", Email: "alice@x.com", Role: domain.RoleUser}

	accessToken, accessExp, err := tm.GenerateAccessToken(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.True(t, accessExp.After(time.Now()))

	refreshToken, refreshExp, err := tm.GenerateRefreshToken(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshToken)
	assert.True(t, refreshExp.After(accessExp))

	claims, err := tm.VerifyAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())

	claims, err = tm.VerifyRefreshToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())
}

func TestTokenManager_SecretsAreNotInterchangeable(t *testing.T) {
	tm := newTestTokenManager()
	identity := Identity{ID: "user-1", Email: "alice@x.com", Role: domain.RoleUser}

	accessToken, _, err := tm.GenerateAccessToken(identity)
	require.NoError(t, err)
	refreshToken, _, err := tm.GenerateRefreshToken(identity)
	require.NoError(t, err)

	_, err = tm.VerifyRefreshToken(accessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_TypeClaimChecked(t *testing.T) {
	// Same secret for both families: the type claim alone must still keep a
	// refresh token out of the access verifier.
	tm := NewTokenManager("shared-secret", "shared-secret", time.Minute, time.Hour)
	identity := Identity{ID: "user-1", Email: "alice@x.com", Role: domain.RoleAdmin}

	refreshToken, _, err := tm.GenerateRefreshToken(identity)
	require.NoError(t, err)

	_, err = tm.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Nanosecond, 30*24*time.Hour)
	identity := Identity{ID: "user-1", Email: "alice@x.com", Role: domain.RoleUser}

	token, _, err := tm.GenerateAccessToken(identity)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = tm.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_TamperedToken(t *testing.T) {
	tm := newTestTokenManager()
	other := NewTokenManager("another-secret", "another-refresh-secret", time.Minute, time.Hour)
	identity := Identity{ID: "user-1", Email: "alice@x.com", Role: domain.RoleUser}

	token, _, err := other.GenerateAccessToken(identity)
	require.NoError(t, err)

	_, err = tm.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.VerifyAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractToken(t *testing.T) {
	token, ok := ExtractToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	_, ok = ExtractToken("")
	assert.False(t, ok)

	// Prefix match is case-sensitive.
	_, ok = ExtractToken("bearer abc.def.ghi")
	assert.False(t, ok)

	_, ok = ExtractToken("Bearer ")
	assert.False(t, ok)

	_, ok = ExtractToken("Basic dXNlcjpwdw==")
	assert.False(t, ok)
}
