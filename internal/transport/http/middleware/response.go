package middleware

import (
	"encoding/json"
	"net/http"
)

// tokenEnvelope is the body written by the auth middlewares on rejection.
type tokenEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(tokenEnvelope{Status: false, Message: msg})
}

func writeTokenResult(w http.ResponseWriter, status int, env tokenEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
