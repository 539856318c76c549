package jwks

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://idp.test"

func newJWKSServer(t *testing.T, pub *rsa.PublicKey, kid string) *httptest.Server {
	t.Helper()
	jwks := map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "RSA",
			"use": "sig",
			"alg": "RS256",
			"kid": kid,
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid, issuer string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":            issuer,
		"sub":            "user-1",
		"custom:role":    "lsp_admin",
		"cognito:username": "alice@firm.com",
		"exp":            exp.Unix(),
	})
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestVerify_ValidToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newJWKSServer(t, &key.PublicKey, "key-1")

	v, err := NewVerifierWithURL(context.Background(), srv.URL, testIssuer)
	require.NoError(t, err)

	tokenStr := signToken(t, key, "key-1", testIssuer, time.Now().Add(time.Hour))
	claims, err := v.Verify(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "lsp_admin", claims["custom:role"])
	assert.Equal(t, "alice@firm.com", claims["cognito:username"])
}

func TestVerify_Malformed(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newJWKSServer(t, &key.PublicKey, "key-1")

	v, err := NewVerifierWithURL(context.Background(), srv.URL, testIssuer)
	require.NoError(t, err)

	_, err = v.Verify("this is not a jwt")
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestVerify_UnknownKid(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newJWKSServer(t, &key.PublicKey, "key-1")

	v, err := NewVerifierWithURL(context.Background(), srv.URL, testIssuer)
	require.NoError(t, err)

	tokenStr := signToken(t, key, "other-key", testIssuer, time.Now().Add(time.Hour))
	_, err = v.Verify(tokenStr)
	assert.True(t, errors.Is(err, ErrUnknownKey))
}

func TestVerify_WrongSignature(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newJWKSServer(t, &key.PublicKey, "key-1")

	v, err := NewVerifierWithURL(context.Background(), srv.URL, testIssuer)
	require.NoError(t, err)

	// Signed with a different key but carrying the published kid.
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokenStr := signToken(t, otherKey, "key-1", testIssuer, time.Now().Add(time.Hour))

	_, err = v.Verify(tokenStr)
	assert.True(t, errors.Is(err, ErrVerification))
}

func TestVerify_Expired(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newJWKSServer(t, &key.PublicKey, "key-1")

	v, err := NewVerifierWithURL(context.Background(), srv.URL, testIssuer)
	require.NoError(t, err)

	tokenStr := signToken(t, key, "key-1", testIssuer, time.Now().Add(-time.Hour))
	_, err = v.Verify(tokenStr)
	assert.True(t, errors.Is(err, ErrVerification))
}

func TestVerify_WrongIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newJWKSServer(t, &key.PublicKey, "key-1")

	v, err := NewVerifierWithURL(context.Background(), srv.URL, testIssuer)
	require.NoError(t, err)

	tokenStr := signToken(t, key, "key-1", "https://elsewhere.test", time.Now().Add(time.Hour))
	_, err = v.Verify(tokenStr)
	assert.True(t, errors.Is(err, ErrVerification))
}
