package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokend/internal/identity/service"
	"github.com/aussiebroadwan/tokend/pkg/httpx"
)

// RefreshHandler serves POST /v1/auth/refresh. The expired access token and
// its paired refresh token are exchanged for a new pair; the old refresh
// token is consumed either way.
type RefreshHandler struct {
	Lifecycle *service.LifecycleService
}

type refreshRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.AccessToken == "" || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "access_token and refresh_token are required")
		return
	}

	pair, err := h.Lifecycle.Refresh(r.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
