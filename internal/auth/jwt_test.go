package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, 30*time.Minute)

	token, err := svc.IssueToken("user-123", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, username, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
	assert.Equal(t, "alice", username)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc := NewTokenService(testSecret, -time.Minute)

	token, err := svc.IssueToken("user-123", "alice")
	require.NoError(t, err)

	_, _, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService(testSecret, 30*time.Minute)
	verifier := NewTokenService("another-secret-another-secret-32", 30*time.Minute)

	token, err := issuer.IssueToken("user-123", "alice")
	require.NoError(t, err)

	_, _, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := NewTokenService(testSecret, 30*time.Minute)

	_, _, err := svc.Validate("not-a-token")
	assert.Error(t, err)

	_, _, err = svc.Validate("")
	assert.Error(t, err)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPassword("s3cret-password", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
}
