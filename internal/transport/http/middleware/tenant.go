package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// maxPeekBytes bounds how much of a request body the tenant guard reads.
const maxPeekBytes = 1 << 20

// SameEnterprise blocks cross-tenant writes: when the request names an
// enterprise id, it must match the eid of the caller's token. A token
// without an eid is rejected rather than waved through, so an identity-only
// session (Google login) cannot touch tenant data.
func SameEnterprise(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ProviderClaimsFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "Access Token Required")
			return
		}
		tokenEid, _ := claims["custom:eid"].(string)
		if tokenEid == "" {
			writeJSONError(w, http.StatusForbidden, "token carries no enterprise scope")
			return
		}

		if qEid := r.URL.Query().Get("eid"); qEid != "" && qEid != tokenEid {
			writeJSONError(w, http.StatusForbidden, "enterprise mismatch")
			return
		}

		if bodyEid, err := peekBodyEid(r); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		} else if bodyEid != "" && bodyEid != tokenEid {
			writeJSONError(w, http.StatusForbidden, "enterprise mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// peekBodyEid reads the JSON body looking for an enterprise id at the
// places request payloads carry one, then restores the body for the
// handler. A non-JSON or empty body yields no eid.
func peekBodyEid(r *http.Request) (string, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return "", nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Non-JSON bodies (uploads) carry no tenant reference.
		return "", nil
	}
	return findEid(payload), nil
}

// findEid checks the known payload shapes in order: meta.eid, data.ATTR1.eid,
// data.eid, then a top-level eid.
func findEid(payload map[string]interface{}) string {
	if meta, ok := payload["meta"].(map[string]interface{}); ok {
		if eid, ok := meta["eid"].(string); ok && eid != "" {
			return eid
		}
	}
	if data, ok := payload["data"].(map[string]interface{}); ok {
		if attr1, ok := data["ATTR1"].(map[string]interface{}); ok {
			if eid, ok := attr1["eid"].(string); ok && eid != "" {
				return eid
			}
		}
		if eid, ok := data["eid"].(string); ok && eid != "" {
			return eid
		}
	}
	if eid, ok := payload["eid"].(string); ok && eid != "" {
		return eid
	}
	return ""
}
