package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	t.Run("Issue then parse", func(t *testing.T) {
		token, exp, err := m.Issue("user-1", "r@x.com", "hr")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

		claims, err := m.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "r@x.com", claims.Email)
		assert.Equal(t, "hr", claims.Role)
	})

	t.Run("Rejects token signed with another secret", func(t *testing.T) {
		token, _, err := NewTokenManager("other", time.Hour).Issue("user-1", "r@x.com", "hr")
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Rejects expired token", func(t *testing.T) {
		old := NewTokenManager("test-secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := old.Issue("user-1", "r@x.com", "hr")
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Rejects unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1", "iss": issuer}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Missing secret", func(t *testing.T) {
		_, _, err := NewTokenManager("", time.Hour).Issue("user-1", "r@x.com", "hr")
		assert.ErrorIs(t, err, ErrMissingSecret)
	})
}
