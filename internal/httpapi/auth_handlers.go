package httpapi

import (
	"net/http"
	"time"

	"userhub.org/internal/audit"
	"userhub.org/internal/auth"
	"userhub.org/internal/obs"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type profileResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	AuthProvider string    `json:"authProvider"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newAuthResponse(sess auth.Session) authResponse {
	return authResponse{
		Token:    sess.Token,
		Type:     "Bearer",
		UserID:   sess.User.ID,
		Email:    sess.User.Email,
		FullName: sess.User.FullName,
	}
}

func newProfileResponse(u *auth.User) profileResponse {
	return profileResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		AuthProvider: string(u.Provider),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	errs := make(map[string]string)
	checkEmail(errs, req.Email)
	checkPassword(errs, req.Password, true)
	checkFullName(errs, req.FullName, true)
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	sess, err := a.auth.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		obs.ObserveRegistration("failure")
		handleAuthError(w, r, err)
		return
	}
	obs.ObserveRegistration("success")

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"user_id": sess.User.ID,
		"email":   sess.User.Email,
	})

	writeJSON(w, http.StatusCreated, newAuthResponse(sess))
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	errs := make(map[string]string)
	checkEmail(errs, req.Email)
	if req.Password == "" {
		errs["password"] = "Password is required"
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	sess, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		obs.ObserveLogin("failure")
		handleAuthError(w, r, err)
		return
	}
	obs.ObserveLogin("success")

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": sess.User.ID,
		"email":   sess.User.Email,
	})

	writeJSON(w, http.StatusOK, newAuthResponse(sess))
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthenticated(w, r, "missing bearer token")
		return
	}

	user, err := a.auth.Profile(r.Context(), identity.UserID)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(user))
}
