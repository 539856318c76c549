package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenantRequest(t *testing.T, eid, body string) *http.Request {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(http.MethodPost, "/", nil)
	} else {
		r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}
	claims := jwt.MapClaims{}
	if eid != "" {
		claims["custom:eid"] = eid
	}
	return r.WithContext(context.WithValue(r.Context(), ProviderClaimsKey, claims))
}

func tenantHandler(captureBody *string) http.Handler {
	return SameEnterprise(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captureBody != nil && r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			*captureBody = string(raw)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestSameEnterprise_NoClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	tenantHandler(nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSameEnterprise_TokenWithoutEidBlocked(t *testing.T) {
	rec := httptest.NewRecorder()
	tenantHandler(nil).ServeHTTP(rec, tenantRequest(t, "", `{"eid":"e-1"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSameEnterprise_MatchingBodyEid(t *testing.T) {
	var seen string
	rec := httptest.NewRecorder()
	body := `{"data":{"ATTR1":{"eid":"e-1","name":"x"}}}`

	tenantHandler(&seen).ServeHTTP(rec, tenantRequest(t, "e-1", body))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	// The guard must restore the body for the handler.
	assert.Equal(t, body, seen)
}

func TestSameEnterprise_MismatchedBodyEid(t *testing.T) {
	cases := []string{
		`{"eid":"e-2"}`,
		`{"meta":{"eid":"e-2"}}`,
		`{"data":{"eid":"e-2"}}`,
		`{"data":{"ATTR1":{"eid":"e-2"}}}`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		tenantHandler(nil).ServeHTTP(rec, tenantRequest(t, "e-1", body))
		assert.Equal(t, http.StatusForbidden, rec.Code, "body %s", body)
	}
}

func TestSameEnterprise_MismatchedQueryEid(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?eid=e-2", nil)
	r = r.WithContext(context.WithValue(r.Context(), ProviderClaimsKey, jwt.MapClaims{"custom:eid": "e-1"}))

	rec := httptest.NewRecorder()
	tenantHandler(nil).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSameEnterprise_BodyWithoutEidAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	tenantHandler(nil).ServeHTTP(rec, tenantRequest(t, "e-1", `{"name":"no tenant ref"}`))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSameEnterprise_NonJSONBodyAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := tenantRequest(t, "e-1", "binary-ish payload")
	require.NotNil(t, req.Body)

	tenantHandler(nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestFindEid_MetaTakesPrecedence(t *testing.T) {
	payload := map[string]interface{}{
		"meta": map[string]interface{}{"eid": "e-meta"},
		"eid":  "e-top",
	}
	assert.Equal(t, "e-meta", findEid(payload))
}
