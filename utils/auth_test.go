package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	accessToken, refreshToken, err := GenerateTokens("0123456789abcdef01234567", "Customer")
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	claims, err := ParseToken(accessToken, AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef01234567", claims.UserID)
	assert.Equal(t, "Customer", claims.Role)

	claims, err = ParseToken(refreshToken, RefreshSecret)
	require.NoError(t, err)
	assert.Equal(t, "Customer", claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	accessToken, _, err := GenerateTokens("0123456789abcdef01234567", "Customer")
	require.NoError(t, err)

	// An access token must not validate against the refresh secret.
	_, err = ParseToken(accessToken, RefreshSecret)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not-a-token", AccessSecret)
	assert.Error(t, err)
}
