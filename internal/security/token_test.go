package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("secret", "user-1", "session-1", "device-1", "user", time.Minute)
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, "secret")
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "device-1", claims.DeviceID)
	assert.Equal(t, "user", claims.Role)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("secret", "user-1", "session-1", "device-1", "user", time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken("secret", "user-1", "session-1", "device-1", "user", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret")
	assert.Error(t, err)
}

func TestRefreshTokenHashing(t *testing.T) {
	token, hash, err := GenerateRefreshToken(0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Len(t, hash, 32)

	assert.Equal(t, hash, HashRefreshToken(token))

	other, _, err := GenerateRefreshToken(0)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
