package auth_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionworks/authcore/internal/auth"
)

func TestNewToken(t *testing.T) {
	tokens := auth.NewRandomTokenSource()

	t.Run("encodes 32 random bytes", func(t *testing.T) {
		token, err := tokens.NewToken()
		require.NoError(t, err)

		raw, err := base64.URLEncoding.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, 32)
	})

	t.Run("tokens are unique across calls", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			token, err := tokens.NewToken()
			require.NoError(t, err)
			assert.False(t, seen[token])
			seen[token] = true
		}
	})
}
