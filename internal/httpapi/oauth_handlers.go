package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"userhub.org/internal/audit"
	"userhub.org/internal/auth"
	"userhub.org/internal/obs"
)

const oauthStateCookie = "userhub_oauth_state"

func (a *API) handleGoogleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.google.Configured() {
		writeError(w, r, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/oauth2/google",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	consentURL, err := a.google.AuthCodeURL(state)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	http.Redirect(w, r, consentURL, http.StatusFound)
}

func (a *API) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.google.Configured() {
		writeError(w, r, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		writeError(w, r, http.StatusBadRequest, "authorization was not granted")
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, r, http.StatusBadRequest, "missing code or state")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != state {
		writeError(w, r, http.StatusBadRequest, "invalid state")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/api/auth/oauth2/google",
		MaxAge:   -1,
		HttpOnly: true,
	})

	identity, err := a.google.Exchange(r.Context(), code)
	if err != nil {
		obs.ObserveOAuthLink("failure")
		writeError(w, r, http.StatusBadRequest, "failed to verify Google identity")
		return
	}

	sess, outcome, err := a.auth.LinkGoogle(r.Context(), auth.GoogleIdentity{
		Email:   identity.Email,
		Name:    identity.Name,
		Subject: identity.Subject,
	})
	if err != nil {
		if errors.Is(err, auth.ErrProviderConflict) {
			obs.ObserveOAuthLink("rejected")
		} else {
			obs.ObserveOAuthLink("failure")
		}
		handleAuthError(w, r, err)
		return
	}
	obs.ObserveOAuthLink(string(outcome))

	_ = audit.LogEvent(r.Context(), "auth.oauth.link", map[string]any{
		"user_id": sess.User.ID,
		"email":   sess.User.Email,
		"outcome": string(outcome),
	})

	target, err := url.Parse(a.successURL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	query := target.Query()
	query.Set("token", sess.Token)
	target.RawQuery = query.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}
