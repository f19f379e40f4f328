package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokend/internal/identity/service"
	"github.com/aussiebroadwan/tokend/internal/identity/store"
	"github.com/aussiebroadwan/tokend/pkg/httpx"
	"github.com/aussiebroadwan/tokend/pkg/slogx"
)

// LockUserHandler serves POST /v1/admin/users/{id}/lock for admins. Locking
// an account also revokes all of its refresh tokens, so the lock takes hold
// at the next refresh rather than waiting out the access token.
type LockUserHandler struct {
	Store     store.Store
	Lifecycle *service.LifecycleService
}

type lockUserRequest struct {
	Locked bool `json:"locked"`
}

func (h *LockUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "user id is required")
		return
	}

	var req lockUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Store.Users().SetLocked(r.Context(), userID, req.Locked); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if req.Locked {
		if err := h.Lifecycle.RevokeAllForSubject(r.Context(), userID); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	slogx.FromContext(r.Context()).Info("account lock changed",
		"subject", userID, "locked", req.Locked)

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
