// Package httpapi exposes the JSON REST surface of the account backend
// and translates domain failures into the fixed HTTP status taxonomy.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"userhub.org/internal/auth"
	"userhub.org/internal/oauth"
	"userhub.org/internal/obs"
)

// ReadyProbe reports readiness, pinging the database when configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options wires the API's collaborators.
type Options struct {
	Auth            *auth.Service
	Tokens          *auth.TokenService
	Google          *oauth.Google
	OAuthSuccessURL string
	ReadyProbe      ReadyProbe
	Version         string
	MaxBodyBytes    int64
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	tokens     *auth.TokenService
	google     *oauth.Google
	successURL string
	readyProbe ReadyProbe
	version    string
	maxBody    int64
}

func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       opts.Auth,
		tokens:     opts.Tokens,
		google:     opts.Google,
		successURL: opts.OAuthSuccessURL,
		readyProbe: opts.ReadyProbe,
		version:    opts.Version,
		maxBody:    opts.MaxBodyBytes,
	}
	if a.successURL == "" {
		a.successURL = "/oauth2/redirect"
	}
	if a.maxBody <= 0 {
		a.maxBody = 1 << 20
	}

	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/me", a.handleMe)
	a.mux.HandleFunc("/api/auth/oauth2/google", a.handleGoogleStart)
	a.mux.HandleFunc("/api/auth/oauth2/google/callback", a.handleGoogleCallback)
	a.mux.HandleFunc("/api/users/profile", a.handleProfile)

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = obs.Instrument(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	h = MaxBodyBytes(h, a.maxBody)
	h = CORS(h)
	h = SecurityHeaders(h)
	return h
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "userhub-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := a.readyProbe.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
