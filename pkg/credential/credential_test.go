package credential_test

import (
	"testing"

	"go-headhunter-backend/pkg/credential"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator(t *testing.T) {
	gen := credential.NewGenerator()

	t.Run("Produces three distinct uuid values", func(t *testing.T) {
		creds, err := gen.Generate()
		require.NoError(t, err)

		for _, v := range []string{creds.Salt, creds.Password, creds.ActivationToken} {
			_, err := uuid.Parse(v)
			assert.NoError(t, err)
		}
		assert.NotEqual(t, creds.Salt, creds.Password)
		assert.NotEqual(t, creds.Password, creds.ActivationToken)
		assert.NotEqual(t, creds.Salt, creds.ActivationToken)
	})

	t.Run("Consecutive calls differ", func(t *testing.T) {
		a, err := gen.Generate()
		require.NoError(t, err)
		b, err := gen.Generate()
		require.NoError(t, err)
		assert.NotEqual(t, a.ActivationToken, b.ActivationToken)
	})
}

func TestHasher(t *testing.T) {
	h := credential.NewHasher()

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, h.Hash("secret", "salt-1"), h.Hash("secret", "salt-1"))
	})

	t.Run("Salt sensitive", func(t *testing.T) {
		assert.NotEqual(t, h.Hash("secret", "salt-1"), h.Hash("secret", "salt-2"))
	})

	t.Run("Digest does not contain plaintext", func(t *testing.T) {
		digest := h.Hash("secret", "salt-1")
		assert.NotContains(t, digest, "secret")
		assert.Len(t, digest, 64)
	})

	t.Run("Verify", func(t *testing.T) {
		digest := h.Hash("secret", "salt-1")
		assert.True(t, h.Verify("secret", "salt-1", digest))
		assert.False(t, h.Verify("wrong", "salt-1", digest))
		assert.False(t, h.Verify("secret", "salt-2", digest))
	})
}
