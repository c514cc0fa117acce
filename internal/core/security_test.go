// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, rehash, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, rehash)

	ok, _, err = VerifyPassword("wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRehashesStaleParams(t *testing.T) {
	old := PasswordParams
	old.Memory = 32 * 1024
	hash, err := hashWith(old, "correct horse")
	require.NoError(t, err)

	ok, rehash, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, rehash)

	ok, again, err := VerifyPassword("correct horse", rehash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, again)
}

func TestVerifyMalformedHash(t *testing.T) {
	for _, h := range []string{"", "plain", "$bcrypt$v=1$m=1,t=1,p=1$aa$bb", "$argon2id$v=1$m=1,t=1,p=1$aa$bb"} {
		_, _, err := VerifyPassword("x", h)
		require.ErrorIs(t, err, ErrMalformedHash, h)
	}
}

func TestTimingSafeWithoutHash(t *testing.T) {
	ok, rehash, err := VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rehash)

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("anything", &empty)
	require.NoError(t, err)
	assert.False(t, ok)
}
