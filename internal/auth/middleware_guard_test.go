package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/task-service/internal/api/http"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/observability"
)

func newGuardedApp(t *testing.T, tm *auth.TokenManager) *fiber.App {
	t.Helper()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	guard := auth.NewMiddleware(tm)
	app.Get("/admin", guard.Handle, auth.RequireRoles(domain.RoleAdmin), func(c *fiber.Ctx) error {
		identity, _ := auth.IdentityFromContext(c)
		return c.JSON(fiber.Map{"id": identity.ID})
	})
	app.Get("/me/:id", guard.Handle, auth.RequireSelfOrRoles("id", domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestGuard_RejectsMissingAndInvalidTokens(t *testing.T) {
	tm := auth.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	app := newGuardedApp(t, tm)

	resp := doRequest(t, app, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, "/admin", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	expired := auth.NewTokenManager("access", "refresh", time.Nanosecond, time.Hour)
	token, _, err := expired.GenerateAccessToken(auth.Identity{ID: "u1", Email: "a@x.com", Role: domain.RoleAdmin})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	resp = doRequest(t, app, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGuard_RoleCheck(t *testing.T) {
	tm := auth.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	app := newGuardedApp(t, tm)

	userToken, _, err := tm.GenerateAccessToken(auth.Identity{ID: "u1", Email: "u@x.com", Role: domain.RoleUser})
	require.NoError(t, err)
	adminToken, _, err := tm.GenerateAccessToken(auth.Identity{ID: "a1", Email: "a@x.com", Role: domain.RoleAdmin})
	require.NoError(t, err)

	resp := doRequest(t, app, "/admin", "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, "/admin", "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuard_SelfOrAdmin(t *testing.T) {
	tm := auth.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	app := newGuardedApp(t, tm)

	userToken, _, err := tm.GenerateAccessToken(auth.Identity{ID: "u1", Email: "u@x.com", Role: domain.RoleUser})
	require.NoError(t, err)
	adminToken, _, err := tm.GenerateAccessToken(auth.Identity{ID: "a1", Email: "a@x.com", Role: domain.RoleAdmin})
	require.NoError(t, err)

	// Own record.
	resp := doRequest(t, app, "/me/u1", "Bearer "+userToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Someone else's record.
	resp = doRequest(t, app, "/me/u2", "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin may read anyone.
	resp = doRequest(t, app, "/me/u2", "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
