package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)

		_, err = GenerateToken(-1)
		require.Error(t, err)
	})

	t.Run("produces url-safe tokens of the right length", func(t *testing.T) {
		token, err := GenerateToken(TokenSize128)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		require.Len(t, raw, TokenSize128)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		a := MustGenerateToken(TokenSize128)
		b := MustGenerateToken(TokenSize128)
		require.NotEqual(t, a, b)
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("bearer-token")
	require.Equal(t, fp, FingerprintToken("bearer-token"))
	require.NotEqual(t, fp, FingerprintToken("other-token"))
	require.Len(t, fp, 43) // base64url of a 32-byte digest
}
