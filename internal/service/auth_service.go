package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/config"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// TokenPair bundles a freshly minted access and refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Password  string
}

// AuthService coordinates registration, login, logout and refresh rotation.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL()),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Register creates a new account with the default role. It returns the
// public identity only, never the password hash and no tokens.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("user already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		Role:         domain.RoleUser,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and mints a token pair. Unknown email and wrong
// password produce the identical error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewInvalidCredentials()
		}
		return nil, nil, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewInvalidCredentials()
	}

	pair, err := s.mintTokenPair(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, pair, nil
}

// Refresh rotates the refresh token and mints a new pair. The stored token is
// the source of truth: a verified token that no longer matches the stored
// value is rejected, so a rotated-out token cannot be replayed. The match and
// replace happen in one conditional update, which keeps two concurrent
// refresh calls from both passing the check.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*domain.User, *TokenPair, error) {
	claims, err := s.tokenMgr.VerifyRefreshToken(presented)
	if err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}

	pair, err := s.mintTokenPair(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	if err := s.users.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("refresh token reuse detected", zap.String("user_id", user.ID))
			return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, pair, nil
}

// Logout clears the stored refresh token matching the presented value. It is
// idempotent: an empty token or one matching no record is a successful no-op.
func (s *AuthService) Logout(ctx context.Context, presented string) error {
	if presented == "" {
		return nil
	}
	if err := s.users.ClearRefreshTokenByValue(ctx, presented); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) mintTokenPair(user *domain.User) (*TokenPair, error) {
	identity := auth.Identity{ID: user.ID, Email: user.Email, Role: user.Role}

	accessToken, accessExp, err := s.tokenMgr.GenerateAccessToken(identity)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := s.tokenMgr.GenerateRefreshToken(identity)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}
