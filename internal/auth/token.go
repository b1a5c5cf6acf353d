package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/task-service/internal/domain"
)

var (
	// ErrExpiredToken is returned when the embedded expiry has passed.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidToken is returned for bad signatures or malformed payloads.
	ErrInvalidToken = errors.New("invalid token")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	bearerPrefix = "Bearer "
)

// Identity is the immutable snapshot embedded in tokens.
type Identity struct {
	ID    string
	Email string
	Role  domain.Role
}

// Claims describes the JWT payload.
type Claims struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	TokenType string      `json:"type"`
	jwt.RegisteredClaims
}

// Identity returns the identity snapshot carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.UserID, Email: c.Email, Role: c.Role}
}

// TokenManager signs and verifies access and refresh JWTs. Access and refresh
// tokens use separate secrets so a leaked access secret cannot mint
// long-lived refresh tokens.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// GenerateAccessToken signs a short-lived access token for the identity.
func (tm *TokenManager) GenerateAccessToken(identity Identity) (string, time.Time, error) {
	return tm.generate(identity, tokenTypeAccess, tm.accessSecret, tm.accessTTL)
}

// GenerateRefreshToken signs a long-lived refresh token for the identity.
func (tm *TokenManager) GenerateRefreshToken(identity Identity) (string, time.Time, error) {
	return tm.generate(identity, tokenTypeRefresh, tm.refreshSecret, tm.refreshTTL)
}

func (tm *TokenManager) generate(identity Identity, tokenType string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID:    identity.ID,
		Email:     identity.Email,
		Role:      identity.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// VerifyAccessToken validates an access token and returns its claims.
func (tm *TokenManager) VerifyAccessToken(tokenStr string) (*Claims, error) {
	return tm.verify(tokenStr, tokenTypeAccess, tm.accessSecret)
}

// VerifyRefreshToken validates a refresh token and returns its claims.
func (tm *TokenManager) VerifyRefreshToken(tokenStr string) (*Claims, error) {
	return tm.verify(tokenStr, tokenTypeRefresh, tm.refreshSecret)
}

func (tm *TokenManager) verify(tokenStr, tokenType string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractToken reads a bearer token from an Authorization header value. The
// "Bearer " prefix is matched case-sensitively. A missing or malformed header
// is an expected outcome, not an error.
func ExtractToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", false
	}
	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
