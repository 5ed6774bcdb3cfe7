package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() JWTConfig {
	return JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "composer-backend",
	}
}

func TestValidateRoundTrip(t *testing.T) {
	cfg := testConfig()
	gen, err := NewJWTGenerator(cfg, time.Hour)
	require.NoError(t, err)
	validator, err := NewJWTValidator(cfg)
	require.NoError(t, err)

	token, err := gen.GenerateToken("user-123", "user@example.com", []string{"editor"})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, []string{"editor"}, claims.Roles)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	gen, err := NewJWTGenerator(cfg, time.Nanosecond)
	require.NoError(t, err)
	validator, err := NewJWTValidator(cfg)
	require.NoError(t, err)

	token, err := gen.GenerateToken("user-123", "", nil)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	gen, err := NewJWTGenerator(testConfig(), time.Hour)
	require.NoError(t, err)

	other := testConfig()
	other.SecretKey = "different-secret"
	validator, err := NewJWTValidator(other)
	require.NoError(t, err)

	token, err := gen.GenerateToken("user-123", "", nil)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	cfg.Issuer = "someone-else"
	gen, err := NewJWTGenerator(cfg, time.Hour)
	require.NoError(t, err)

	validator, err := NewJWTValidator(testConfig())
	require.NoError(t, err)

	token, err := gen.GenerateToken("user-123", "", nil)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	validator, err := NewJWTValidator(testConfig())
	require.NoError(t, err)

	_, err = validator.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidatorRequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}
