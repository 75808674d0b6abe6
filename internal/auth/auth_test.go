// internal/auth/auth_test.go
package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	Init()

	token, err := CreateJWT("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	name, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
}

func TestJWTRejectsTampering(t *testing.T) {
	Init()

	token, err := CreateJWT("alice")
	require.NoError(t, err)

	_, err = AuthenticateJWT(token + "x")
	assert.Error(t, err)

	_, err = AuthenticateJWT("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	_, err := VerifyPassword("hunter2", "garbage")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = VerifyPassword("hunter2", "$argon2i$v=19$m=65536,t=5,p=2$c2FsdA$a2V5")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
