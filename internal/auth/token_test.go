package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("")
	require.Error(t, err)
	_, err = NewTokenService("   ")
	require.Error(t, err)
}

func TestTokenIssueAndValidate(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)

	token, expiresAt, err := svc.Issue("user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(svc.TTL()), expiresAt, 5*time.Second)

	subject, err := svc.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", subject)
}

func TestTokenIssueRequiresSubject(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)
	_, _, err = svc.Issue("  ")
	require.Error(t, err)
}

func TestTokenValidateExpired(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := base
	svc, err := NewTokenService("test-secret",
		WithTTL(time.Hour),
		WithTokenClock(func() time.Time { return clock }),
	)
	require.NoError(t, err)

	token, expiresAt, err := svc.Issue("user@example.com")
	require.NoError(t, err)
	require.Equal(t, base.Add(time.Hour), expiresAt)

	clock = base.Add(30 * time.Minute)
	_, err = svc.Validate(token)
	require.NoError(t, err)

	clock = expiresAt.Add(time.Second)
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenValidateWrongSecret(t *testing.T) {
	issuer, err := NewTokenService("secret-a")
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-b")
	require.NoError(t, err)

	token, _, err := issuer.Issue("user@example.com")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenValidateGarbage(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)

	for _, token := range []string{"", "   ", "garbage", "a.b.c"} {
		_, err := svc.Validate(token)
		require.ErrorIs(t, err, ErrTokenMalformed, "token %q", token)
	}
}

func TestTokenValidateIssuerMismatch(t *testing.T) {
	issuer, err := NewTokenService("test-secret", WithIssuer("someone-else"))
	require.NoError(t, err)
	verifier, err := NewTokenService("test-secret")
	require.NoError(t, err)

	token, _, err := issuer.Issue("user@example.com")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.ErrorIs(t, err, ErrTokenMalformed)
}
