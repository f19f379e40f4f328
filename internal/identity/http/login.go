package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokend/internal/identity/service"
	"github.com/aussiebroadwan/tokend/pkg/httpx"
)

// LoginHandler serves POST /v1/auth/login. It authenticates an email and
// password and returns a fresh token pair.
type LoginHandler struct {
	Lifecycle *service.LifecycleService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "email and password are required")
		return
	}

	pair, err := h.Lifecycle.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
