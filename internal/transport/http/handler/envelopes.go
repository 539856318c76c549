package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/cognito"
)

// Envelope is the generic response wrapper.
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// TokenEnvelope wraps login responses.
type TokenEnvelope struct {
	Status    bool        `json:"status"`
	Message   string      `json:"message,omitempty"`
	Token     string      `json:"token,omitempty"`
	User      interface{} `json:"user,omitempty"`
	ExpiresIn int         `json:"expires_in,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Status: false, Message: msg})
}

// writeServiceError maps a service error onto an HTTP status via the domain
// sentinels, falling back to the identity provider's own status when the
// error never got folded into one.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFromErr(err), err.Error())
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	}
	if sc := cognito.StatusCode(err); sc >= 400 {
		return sc
	}
	return http.StatusInternalServerError
}
