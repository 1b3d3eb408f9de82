package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
)

func testPasswordConfig() *auth.PasswordConfig {
	return &auth.PasswordConfig{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := testPasswordConfig()

	hash, salt, err := auth.HashPassword("Str0ng!Passw0rd", cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEmpty(t, salt)

	ok, err := auth.VerifyPassword("Str0ng!Passw0rd", hash, salt, cfg)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.VerifyPassword("wrong", hash, salt, cfg)
	require.NoError(t, err)
	assert.False(t, ok)

	// Salts are random
	hash2, salt2, err := auth.HashPassword("Str0ng!Passw0rd", cfg)
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
	assert.NotEqual(t, salt, salt2)
}

func TestVerifyPassword_BadEncoding(t *testing.T) {
	cfg := testPasswordConfig()

	_, err := auth.VerifyPassword("x", "%%%", "c2FsdA==", cfg)
	assert.Error(t, err)

	_, err = auth.VerifyPassword("x", "aGFzaA==", "%%%", cfg)
	assert.Error(t, err)
}

func TestVerifyStoredPassword(t *testing.T) {
	cfg := testPasswordConfig()
	hash, salt, err := auth.HashPassword("secret-pass", cfg)
	require.NoError(t, err)

	assert.True(t, auth.VerifyStoredPassword("secret-pass", &hash, &salt, cfg))
	assert.False(t, auth.VerifyStoredPassword("other-pass", &hash, &salt, cfg))
	assert.False(t, auth.VerifyStoredPassword("secret-pass", nil, nil, cfg))

	empty := ""
	assert.False(t, auth.VerifyStoredPassword("secret-pass", &empty, &salt, cfg))
}
