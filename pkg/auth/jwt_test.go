package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltflow/crm/pkg/models"
)

const testSecret = "test-secret-key-minimum-32-characters-long"

func TestValidateJWT(t *testing.T) {
	t.Run("Success - Round trip keeps claims", func(t *testing.T) {
		token, err := GenerateJWT(123, "owner@voltflow.test", "Admin", testSecret, 24)
		require.NoError(t, err)

		claims, err := ValidateJWT(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, 123, claims.UserID)
		assert.Equal(t, "owner@voltflow.test", claims.Email)
		assert.Equal(t, models.RoleAdmin, claims.NormalizedRole())
		assert.True(t, claims.ExpiresAt.After(time.Now()))
		assert.Greater(t, claims.RemainingTTL(), 23*time.Hour)
	})

	t.Run("Error - Malformed token", func(t *testing.T) {
		_, err := ValidateJWT("invalid.token.here", testSecret)
		assert.Error(t, err)
		_, err = ValidateJWT("", testSecret)
		assert.Error(t, err)
	})

	t.Run("Error - Wrong secret", func(t *testing.T) {
		token, err := GenerateJWT(1, "a@b.c", "user", testSecret, 24)
		require.NoError(t, err)
		_, err = ValidateJWT(token, "wrong-secret-key-minimum-32-characters-long")
		assert.Error(t, err)
	})

	t.Run("Error - Expired token", func(t *testing.T) {
		token, err := GenerateJWT(1, "a@b.c", "user", testSecret, -1)
		require.NoError(t, err)
		_, err = ValidateJWT(token, testSecret)
		assert.Error(t, err)
	})
}

func TestGenerateJWTRoles(t *testing.T) {
	for _, role := range []string{"admin", "manager", "technician", "user"} {
		token, err := GenerateJWT(1, "a@b.c", role, testSecret, 1)
		require.NoError(t, err)
		claims, err := ValidateJWT(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, role, claims.Role)
	}
}
