package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		"test-secret-key-for-jwt-signing-32-chars",
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		secretKey   string
		expectError bool
	}{
		{
			name:        "valid configuration",
			secretKey:   "test-secret-key-for-jwt-signing-32-chars",
			expectError: false,
		},
		{
			name:        "missing secret key",
			secretKey:   "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewTokenService(15*time.Minute, 7*24*time.Hour, "iss", "aud", tt.secretKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestGenerateAndValidateAdminTokens(t *testing.T) {
	svc, err := createTestTokenService()
	require.NoError(t, err)

	access, refresh, err := svc.GenerateAdminTokens(42)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := svc.ValidateAdminToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AdminID)
	assert.Equal(t, "access", claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)

	refreshClaims, err := svc.ValidateAdminToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestValidateAdminTokenRejectsGarbage(t *testing.T) {
	svc, err := createTestTokenService()
	require.NoError(t, err)

	_, err = svc.ValidateAdminToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateAdminTokenRejectsWrongKey(t *testing.T) {
	svc, err := createTestTokenService()
	require.NoError(t, err)

	other, err := NewTokenService(15*time.Minute, time.Hour, "iss", "aud", "another-secret-key-that-is-32-chars!!")
	require.NoError(t, err)

	access, _, err := other.GenerateAdminTokens(1)
	require.NoError(t, err)

	_, err = svc.ValidateAdminToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateAdminTokenExpired(t *testing.T) {
	svc, err := NewTokenService(-time.Minute, time.Hour, "iss", "aud", "test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)

	access, _, err := svc.GenerateAdminTokens(1)
	require.NoError(t, err)

	_, err = svc.ValidateAdminToken(access)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
