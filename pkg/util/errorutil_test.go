package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	conflict := ToDomainError(NewConflict("user already exists", nil))
	require.NotNil(t, conflict)
	assert.Equal(t, "CONFLICT", conflict.Code)
	assert.Equal(t, http.StatusConflict, conflict.HTTPStatus)

	// Unknown errors map to a generic 500 and keep the cause wrapped.
	cause := errors.New("connection reset")
	internal := ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.Equal(t, "internal server error", internal.Message)
	assert.ErrorIs(t, internal, cause)
}

func TestInvalidCredentialsIsGeneric(t *testing.T) {
	err := ToDomainError(NewInvalidCredentials())
	assert.Equal(t, "INVALID_CREDENTIALS", err.Code)
	assert.Equal(t, http.StatusUnauthorized, err.HTTPStatus)
	assert.Equal(t, "invalid credentials", err.Message)
	assert.Nil(t, err.Details)
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := NewInternalError(cause)

	var domainErr *DomainError
	require.True(t, errors.As(wrapped, &domainErr))
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, domainErr.Error(), "boom")
}
