package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	jwtinfra "github.com/qwiktax/lsp-oms/internal/infrastructure/jwt"
	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkTokenHandler(provider *jwtinfra.Provider) http.Handler {
	return CheckToken(provider)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) tokenEnvelope {
	t.Helper()
	var env tokenEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCheckToken_Missing(t *testing.T) {
	provider := jwtinfra.NewProvider("secret")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	checkTokenHandler(provider).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Status)
	assert.Equal(t, CodeTokenNotSupplied, env.Code)
}

func TestCheckToken_Invalid(t *testing.T) {
	provider := jwtinfra.NewProvider("secret")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-access-token", "garbage")

	checkTokenHandler(provider).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, CodeTokenInvalid, decodeEnvelope(t, rec).Code)
}

func TestCheckToken_Expired(t *testing.T) {
	provider := jwtinfra.NewProvider("secret")
	expired := jwtinfra.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte("secret"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-access-token", tokenStr)

	checkTokenHandler(provider).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, CodeTokenExpired, decodeEnvelope(t, rec).Code)
}

func TestCheckToken_ValidPassesClaims(t *testing.T) {
	provider := jwtinfra.NewProvider("secret")
	tokenStr, err := provider.IssueOTP(domain.AuthAttrs{
		Eid: "e-1", Username: "+911@lsp-rider.local", Role: "lsp_rider",
	}, "+911")
	require.NoError(t, err)

	var gotEid string
	handler := CheckToken(provider)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := SelfClaimsFromContext(r.Context())
		require.True(t, ok)
		gotEid = claims.Eid
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "e-1", gotEid)
}

func TestBearerToken_HeaderPrecedence(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-access-token", "from-custom")
	req.Header.Set("Authorization", "Bearer from-auth")
	assert.Equal(t, "from-custom", BearerToken(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer from-auth")
	assert.Equal(t, "from-auth", BearerToken(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "raw-token")
	assert.Equal(t, "raw-token", BearerToken(req))
}
