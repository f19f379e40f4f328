package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokend/internal/identity/service"
	"github.com/aussiebroadwan/tokend/pkg/httpx"
)

// ValidateHandler serves POST /v1/auth/validate. Resource servers post an
// access token and get back its claims if, and only if, the token verifies
// in full. Inactive tokens return {"active": false} with no detail, in the
// spirit of RFC 7662.
type ValidateHandler struct {
	Lifecycle *service.LifecycleService
}

type validateRequest struct {
	AccessToken string `json:"access_token"`
}

type validateResponse struct {
	Active    bool     `json:"active"`
	Subject   string   `json:"sub,omitempty"`
	Email     string   `json:"email,omitempty"`
	Name      string   `json:"name,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	JTI       string   `json:"jti,omitempty"`
	ExpiresAt int64    `json:"exp,omitempty"`
}

func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.AccessToken == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "access_token is required")
		return
	}

	claims, err := h.Lifecycle.Validate(r.Context(), req.AccessToken)
	if err != nil {
		// Invalid tokens are not an HTTP error: the introspection contract
		// answers "is this active", it doesn't explain rejections.
		httpx.WriteJSON(w, http.StatusOK, validateResponse{Active: false})
		return
	}

	resp := validateResponse{
		Active:  true,
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Roles:   claims.Roles,
		JTI:     claims.ID,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
