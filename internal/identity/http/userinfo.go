package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokend/internal/identity/store"
	"github.com/aussiebroadwan/tokend/pkg/httpx"
	"github.com/aussiebroadwan/tokend/pkg/slogx"
)

// UserInfoHandler serves GET /v1/userinfo for the authenticated caller.
// The response comes from the user table, not the token, so it reflects
// changes made since the token was issued.
type UserInfoHandler struct {
	Store store.Store
}

func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok || userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized,
			"invalid_token", "no authenticated subject")
		return
	}

	user, err := h.Store.Users().GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Token verified but the account is gone.
			httpx.WriteError(w, http.StatusUnauthorized,
				"invalid_token", "subject no longer exists")
			return
		}
		slogx.FromContext(r.Context()).Error("userinfo lookup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user.Info())
}
