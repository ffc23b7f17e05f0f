package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltflow/crm/pkg/cache"
)

func setupTestRedis(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestTokenBlacklist(t *testing.T) {
	client, mr := setupTestRedis(t)
	blacklist := NewTokenBlacklist(client)
	ctx := context.Background()

	t.Run("Success - Added token is revoked", func(t *testing.T) {
		require.NoError(t, blacklist.Add(ctx, "test.jwt.token", time.Hour))
		revoked, err := blacklist.IsBlacklisted(ctx, "test.jwt.token")
		require.NoError(t, err)
		assert.True(t, revoked)
		assert.True(t, mr.Exists(blacklistPrefix+HashToken("test.jwt.token")))
	})

	t.Run("Success - Unknown token is not revoked", func(t *testing.T) {
		revoked, err := blacklist.IsBlacklisted(ctx, "nonexistent.jwt.token")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("Success - Entry expires with the token", func(t *testing.T) {
		require.NoError(t, blacklist.Add(ctx, "short.lived.token", time.Minute))
		mr.FastForward(2 * time.Minute)
		revoked, err := blacklist.IsBlacklisted(ctx, "short.lived.token")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("Success - Expired token is not stored", func(t *testing.T) {
		require.NoError(t, blacklist.Add(ctx, "already.expired", 0))
		assert.False(t, mr.Exists(blacklistPrefix+HashToken("already.expired")))
	})
}

func TestValidateJWTWithBlacklist(t *testing.T) {
	client, _ := setupTestRedis(t)
	blacklist := NewTokenBlacklist(client)
	ctx := context.Background()

	token, err := GenerateJWT(7, "tech@voltflow.test", "technician", testSecret, 1)
	require.NoError(t, err)

	claims, err := ValidateJWTWithBlacklist(ctx, token, testSecret, blacklist)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)

	require.NoError(t, blacklist.Add(ctx, token, claims.RemainingTTL()))
	_, err = ValidateJWTWithBlacklist(ctx, token, testSecret, blacklist)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = ValidateJWTWithBlacklist(ctx, token, testSecret, nil)
	assert.NoError(t, err)
}
