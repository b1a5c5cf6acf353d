package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/domain"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// RoleAllowed reports whether role is in the allowed set. An empty set
// allows any role.
func RoleAllowed(role domain.Role, allowed []domain.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// RequireRoles ensures the caller holds one of the allowed roles.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !RoleAllowed(identity.Role, allowed) {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}

// RequireSelfOrRoles allows the request when the path parameter matches the
// caller's own id, or when the caller holds one of the allowed roles.
func RequireSelfOrRoles(param string, allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if c.Params(param) == identity.ID {
			return c.Next()
		}
		if !RoleAllowed(identity.Role, allowed) {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}
