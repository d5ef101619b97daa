package httpapi

import (
	"net/http"

	"userhub.org/internal/audit"
	"userhub.org/internal/auth"
)

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthenticated(w, r, "missing bearer token")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getProfile(w, r, identity)
	case http.MethodPut:
		a.updateProfile(w, r, identity)
	case http.MethodDelete:
		a.deleteProfile(w, r, identity)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	user, err := a.auth.Profile(r.Context(), identity.UserID)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(user))
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	errs := make(map[string]string)
	checkPassword(errs, req.Password, false)
	checkFullName(errs, req.FullName, false)
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	user, err := a.auth.UpdateProfile(r.Context(), identity.UserID, auth.ProfileUpdate{
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.profile.update", map[string]any{
		"user_id": user.ID,
	})

	writeJSON(w, http.StatusOK, newProfileResponse(user))
}

func (a *API) deleteProfile(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	if err := a.auth.DeleteAccount(r.Context(), identity.UserID); err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.delete", map[string]any{
		"user_id": identity.UserID,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User account deleted successfully",
	})
}
