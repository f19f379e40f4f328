package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokend/internal/identity/service"
	"github.com/aussiebroadwan/tokend/pkg/httpx"
)

// RevokeHandler serves POST /v1/auth/revoke. The caller presents a token
// pair and the refresh token is permanently invalidated. A refresh token
// with no record for the caller answers 404.
type RevokeHandler struct {
	Lifecycle *service.LifecycleService
}

type revokeRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.AccessToken == "" || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "access_token and refresh_token are required")
		return
	}

	if err := h.Lifecycle.Revoke(r.Context(), req.AccessToken, req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// LogoutHandler serves POST /v1/auth/logout. It runs behind authentication
// and revokes every refresh token the caller holds, ending all sessions.
type LogoutHandler struct {
	Lifecycle *service.LifecycleService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok || userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized,
			"invalid_token", "no authenticated subject")
		return
	}

	if err := h.Lifecycle.RevokeAllForSubject(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
