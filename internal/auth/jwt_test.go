package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/models"
)

func TestJWTManager(t *testing.T) {
	m, err := NewJWTManager("test-secret", time.Hour)
	require.NoError(t, err)
	user := &models.User{ID: "user-1", Email: "alice@example.com", DisplayName: "Alice"}

	t.Run("round trip", func(t *testing.T) {
		token, expiresAt, err := m.Generate(user)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

		claims, err := m.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID())
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, "Alice", claims.DisplayName)
		assert.Equal(t, Issuer, claims.Issuer)
	})

	t.Run("expired token", func(t *testing.T) {
		token, _, err := m.Generate(user)
		require.NoError(t, err)

		later, err := NewJWTManager("test-secret", time.Hour)
		require.NoError(t, err)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

		_, err = later.Validate(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := m.Generate(user)
		require.NoError(t, err)

		other, err := NewJWTManager("other-secret", time.Hour)
		require.NoError(t, err)
		_, err = other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}
