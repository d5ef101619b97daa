package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotContains(t, hash, "correct horse battery")

	require.NoError(t, VerifyPassword(hash, "correct horse battery"))
	require.Error(t, VerifyPassword(hash, "wrong password"))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("secret-1")
	require.NoError(t, err)
	h2, err := HashPassword("secret-1")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	require.Error(t, VerifyPassword("", "anything"))
	require.Error(t, VerifyPassword("not-a-bcrypt-digest", "anything"))
	require.Error(t, VerifyPassword(strings.Repeat("x", 60), "anything"))
}
