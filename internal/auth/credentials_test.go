package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestOpenCredentials(t *testing.T) {
	c, err := NewCredentials("", "")
	require.NoError(t, err)
	assert.True(t, c.Open())

	assert.NoError(t, c.Check("anyone", "anything"))
	assert.ErrorIs(t, c.Check("", "pw"), ErrInvalidCredentials)
	assert.ErrorIs(t, c.Check("   ", "pw"), ErrInvalidCredentials)
	assert.ErrorIs(t, c.Check("user", ""), ErrInvalidCredentials)
}

func TestHashedCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	c, err := NewCredentials("admin", string(hash))
	require.NoError(t, err)
	assert.False(t, c.Open())

	assert.NoError(t, c.Check("admin", "s3cret"))
	assert.ErrorIs(t, c.Check("admin", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, c.Check("root", "s3cret"), ErrInvalidCredentials)
}

func TestNewCredentialsValidatesConfig(t *testing.T) {
	_, err := NewCredentials("admin", "not-a-bcrypt-hash")
	assert.Error(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = NewCredentials("", string(hash))
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("hunter2")))

	_, err = HashPassword("")
	assert.Error(t, err)
}
