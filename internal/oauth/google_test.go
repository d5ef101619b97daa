package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGoogle(t *testing.T, tokenHandler, userInfoHandler http.HandlerFunc) *Google {
	t.Helper()
	tokenSrv := httptest.NewServer(tokenHandler)
	t.Cleanup(tokenSrv.Close)
	infoSrv := httptest.NewServer(userInfoHandler)
	t.Cleanup(infoSrv.Close)

	g := NewGoogle("client-id", "client-secret", "https://app.example.com/callback")
	g.TokenURL = tokenSrv.URL
	g.UserInfoURL = infoSrv.URL
	return g
}

func TestConfigured(t *testing.T) {
	require.True(t, NewGoogle("id", "secret", "uri").Configured())
	require.False(t, NewGoogle("", "secret", "uri").Configured())
	require.False(t, NewGoogle("id", "", "uri").Configured())
	require.False(t, NewGoogle("id", "secret", "").Configured())
	require.False(t, (*Google)(nil).Configured())
}

func TestAuthCodeURL(t *testing.T) {
	g := NewGoogle("client-id", "client-secret", "https://app.example.com/callback")

	raw, err := g.AuthCodeURL("state-123")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "accounts.google.com", u.Host)

	q := u.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "client-id", q.Get("client_id"))
	require.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
	require.Equal(t, "openid email profile", q.Get("scope"))
	require.Equal(t, "state-123", q.Get("state"))
}

func TestExchange(t *testing.T) {
	token := func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		require.Equal(t, "code-123", r.PostForm.Get("code"))
		require.Equal(t, "client-id", r.PostForm.Get("client_id"))
		require.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		require.Equal(t, "https://app.example.com/callback", r.PostForm.Get("redirect_uri"))
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "access-abc"})
	}
	userInfo := func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer access-abc", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":   "google-sub-1",
			"name":  "Test User",
			"email": "user@example.com",
		})
	}

	g := newTestGoogle(t, token, userInfo)
	identity, err := g.Exchange(context.Background(), "code-123")
	require.NoError(t, err)
	require.Equal(t, Identity{
		Email:   "user@example.com",
		Name:    "Test User",
		Subject: "google-sub-1",
	}, identity)
}

func TestExchangeNameDefaultsToEmail(t *testing.T) {
	token := func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "access-abc"})
	}
	userInfo := func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":   "google-sub-2",
			"email": "noname@example.com",
		})
	}

	g := newTestGoogle(t, token, userInfo)
	identity, err := g.Exchange(context.Background(), "code-123")
	require.NoError(t, err)
	require.Equal(t, "noname@example.com", identity.Name)
}

func TestExchangeTokenFailure(t *testing.T) {
	token := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}
	userInfo := func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("userinfo should not be called")
	}

	g := newTestGoogle(t, token, userInfo)
	_, err := g.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
}

func TestExchangeUserInfoMissingFields(t *testing.T) {
	token := func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "access-abc"})
	}
	userInfo := func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "No Subject"})
	}

	g := newTestGoogle(t, token, userInfo)
	_, err := g.Exchange(context.Background(), "code-123")
	require.Error(t, err)
}
