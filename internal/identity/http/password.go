package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokend/internal/identity/service"
	"github.com/aussiebroadwan/tokend/pkg/httpx"
)

// ChangePasswordHandler serves POST /v1/users/password for the authenticated
// caller. A successful change revokes all of the caller's refresh tokens, so
// clients must log in again.
type ChangePasswordHandler struct {
	Lifecycle *service.LifecycleService
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok || userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized,
			"invalid_token", "no authenticated subject")
		return
	}

	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "current_password and new_password are required")
		return
	}

	if err := h.Lifecycle.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
