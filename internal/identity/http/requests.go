package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tokend/internal/identity/service"
	"github.com/aussiebroadwan/tokend/internal/identity/store"
	"github.com/aussiebroadwan/tokend/pkg/httpx"
	"github.com/aussiebroadwan/tokend/pkg/slogx"
)

const maxBodyBytes = 64 << 10 // request bodies carry tokens, not payloads

// decodeJSON parses the request body into dst, rejecting non-JSON content
// types, unknown fields, and oversized bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/json") {
		httpx.WriteError(w, http.StatusUnsupportedMediaType,
			"invalid_request", "Content-Type must be application/json")
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "malformed JSON body")
		return false
	}
	return true
}

// writeServiceError maps service-level errors onto HTTP responses. Anything
// unrecognised is a 500 and gets logged; the well-known sentinels map to
// stable error codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized,
			"invalid_token", "token rejected")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized,
			"invalid_credentials", "email or password incorrect")
	case errors.Is(err, service.ErrAccountLocked):
		httpx.WriteError(w, http.StatusForbidden,
			"account_locked", "account is locked")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound,
			"not_found", "no matching token")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "internal error")
	}
}
