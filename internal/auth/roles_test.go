package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/task-service/internal/domain"
)

func TestRoleAllowed(t *testing.T) {
	adminOnly := []domain.Role{domain.RoleAdmin}
	staff := []domain.Role{domain.RoleAdmin, domain.RoleManager}

	assert.True(t, RoleAllowed(domain.RoleAdmin, adminOnly))
	assert.False(t, RoleAllowed(domain.RoleManager, adminOnly))
	assert.False(t, RoleAllowed(domain.RoleUser, adminOnly))

	assert.True(t, RoleAllowed(domain.RoleAdmin, staff))
	assert.True(t, RoleAllowed(domain.RoleManager, staff))
	assert.False(t, RoleAllowed(domain.RoleUser, staff))

	// Empty allow-list admits any role.
	assert.True(t, RoleAllowed(domain.RoleUser, nil))
}
