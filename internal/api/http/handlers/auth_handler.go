package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

const refreshCookieName = "refresh_token"

// AuthHandler exposes the auth surface: register, login, logout, refresh.
type AuthHandler struct {
	auth       *service.AuthService
	production bool
}

// NewAuthHandler constructs handler. production toggles the Secure cookie flag.
func NewAuthHandler(authService *service.AuthService, production bool) *AuthHandler {
	return &AuthHandler{auth: authService, production: production}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return apperrors.NewValidationError("first_name, last_name, email, password required", nil)
	}

	user, err := h.auth.Register(c.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    dto.NewUserResponse(user),
	})
}

// Login handles POST /auth/login. The refresh token travels back both in the
// body and as an HTTP-only cookie; subsequent refresh and logout calls read
// the cookie only.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, pair, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)

	return c.JSON(dto.LoginResponse{
		Message: "Login successful",
		User:    dto.NewUserResponse(user),
		Tokens: dto.TokensResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		},
	})
}

// Logout handles POST /auth/logout. Idempotent: no cookie means nothing to do.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	presented := c.Cookies(refreshCookieName)
	if presented == "" {
		return c.SendStatus(http.StatusNoContent)
	}

	if err := h.auth.Logout(c.Context(), presented); err != nil {
		return err
	}

	h.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Refresh handles POST /auth/refresh. The refresh token comes from the
// cookie, not the request body.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	presented := c.Cookies(refreshCookieName)
	if presented == "" {
		return apperrors.NewUnauthorized("refresh token not found")
	}

	_, pair, err := h.auth.Refresh(c.Context(), presented)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)

	return c.JSON(dto.RefreshResponse{
		Message:     "Token refreshed successfully",
		AccessToken: pair.AccessToken,
	})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}
