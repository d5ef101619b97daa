// Package oauth implements the Google OAuth2 client used by the HTTP
// layer: building the consent URL, exchanging the authorization code and
// fetching the asserted identity attributes.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// Identity is the verified attribute set produced by a completed flow.
type Identity struct {
	Email   string
	Name    string
	Subject string
}

// Google holds provider configuration. Endpoint URLs are fields so tests
// can point them at a local server.
type Google struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	AuthURL     string
	TokenURL    string
	UserInfoURL string

	HTTPClient *http.Client
}

// NewGoogle constructs a client with the standard Google endpoints and
// openid/email/profile scopes.
func NewGoogle(clientID, clientSecret, redirectURI string) *Google {
	return &Google{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		AuthURL:      googleAuthURL,
		TokenURL:     googleTokenURL,
		UserInfoURL:  googleUserInfoURL,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether the provider credentials are present.
func (g *Google) Configured() bool {
	return g != nil && g.ClientID != "" && g.ClientSecret != "" && g.RedirectURI != ""
}

// AuthCodeURL builds the consent-screen redirect target for the given
// anti-forgery state value.
func (g *Google) AuthCodeURL(state string) (string, error) {
	authURL, err := url.Parse(g.AuthURL)
	if err != nil {
		return "", fmt.Errorf("oauth: invalid auth url: %w", err)
	}
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", g.ClientID)
	query.Set("redirect_uri", g.RedirectURI)
	query.Set("scope", strings.Join(g.Scopes, " "))
	query.Set("state", state)
	authURL.RawQuery = query.Encode()
	return authURL.String(), nil
}

// Exchange trades the authorization code for an access token and fetches
// the user's asserted attributes from the userinfo endpoint.
func (g *Google) Exchange(ctx context.Context, code string) (Identity, error) {
	accessToken, err := g.exchangeToken(ctx, code)
	if err != nil {
		return Identity{}, err
	}
	return g.fetchIdentity(ctx, accessToken)
}

func (g *Google) exchangeToken(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", g.RedirectURI)
	form.Set("client_id", g.ClientID)
	form.Set("client_secret", g.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.New("oauth: token exchange failed")
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", errors.New("oauth: missing access token")
	}
	return payload.AccessToken, nil
}

func (g *Google) fetchIdentity(ctx context.Context, accessToken string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client().Do(req)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Identity{}, errors.New("oauth: userinfo request failed")
	}

	var payload struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Identity{}, err
	}
	if payload.Sub == "" || payload.Email == "" {
		return Identity{}, errors.New("oauth: userinfo response missing subject or email")
	}
	name := payload.Name
	if name == "" {
		name = payload.Email
	}
	return Identity{Email: payload.Email, Name: name, Subject: payload.Sub}, nil
}

func (g *Google) client() *http.Client {
	if g.HTTPClient != nil {
		return g.HTTPClient
	}
	return http.DefaultClient
}
