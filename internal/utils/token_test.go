package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test_secret")
	os.Exit(m.Run())
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken(42, "admin", "a@example.com")
	assert.NoError(t, err)

	claims, err := ValidateToken(token, TokenTypeSession)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, TokenTypeSession, claims.Type)
}

func TestActionTokenRoundTrip(t *testing.T) {
	token, err := GenerateActionToken(7, "new@example.com")
	assert.NoError(t, err)

	claims, err := ValidateToken(token, TokenTypeRegistrationAction)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, TokenTypeRegistrationAction, claims.Type)
}

func TestTokenTypeMismatchRejected(t *testing.T) {
	session, err := GenerateSessionToken(1, "user", "u@example.com")
	assert.NoError(t, err)
	action, err := GenerateActionToken(1, "u@example.com")
	assert.NoError(t, err)

	// A session token is not an action token, and vice versa.
	_, err = ValidateToken(session, TokenTypeRegistrationAction)
	assert.Error(t, err)
	_, err = ValidateToken(action, TokenTypeSession)
	assert.Error(t, err)
}

func TestValidateTokenTamperedSignature(t *testing.T) {
	token, err := GenerateSessionToken(1, "user", "u@example.com")
	assert.NoError(t, err)

	_, err = ValidateToken(token+"x", TokenTypeSession)
	assert.Error(t, err)
}
