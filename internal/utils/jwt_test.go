package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken("sess-1", "user-1", time.Now().Add(time.Hour), "secret")
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.ID)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("sess-1", "user-1", time.Now().Add(time.Hour), "secret")
	require.NoError(t, err)

	_, err = ValidateToken(token, "other")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := GenerateSessionToken("sess-1", "user-1", time.Now().Add(-time.Minute), "secret")
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.Error(t, err)
}
