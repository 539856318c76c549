package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/jwks"
)

// ProviderClaimsKey carries the claims of a directory-issued ID token
// through the request context.
const ProviderClaimsKey contextKey = "providerClaims"

// ProviderVerifier validates directory-issued ID tokens.
type ProviderVerifier interface {
	Verify(tokenStr string) (jwt.MapClaims, error)
}

// RequireProvider validates a directory-issued ID token. The rejection
// message numbers the verification step that failed so support can tell a
// corrupted token from a key rollover from a bad signature.
func RequireProvider(verifier ProviderVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := BearerToken(r)
			if tokenStr == "" {
				writeJSONError(w, http.StatusUnauthorized, "Access Token Required")
				return
			}
			claims, err := verifier.Verify(tokenStr)
			if err != nil {
				switch {
				case errors.Is(err, jwks.ErrMalformed):
					writeJSONError(w, http.StatusUnauthorized, "Invalid Access Token - 1")
				case errors.Is(err, jwks.ErrUnknownKey):
					writeJSONError(w, http.StatusUnauthorized, "Invalid Access Token - 2")
				default:
					writeJSONError(w, http.StatusUnauthorized, "Invalid Access Token - 3")
				}
				return
			}
			ctx := context.WithValue(r.Context(), ProviderClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProviderClaimsFromContext extracts ID token claims from the request context.
func ProviderClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	c, ok := ctx.Value(ProviderClaimsKey).(jwt.MapClaims)
	return c, ok
}

// RequireRole allows only requests whose ID token carries one of the given
// roles in its custom role attribute.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ProviderClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Access Token Required")
				return
			}
			role, _ := claims[domain.AttrRole].(string)
			for _, allowed := range allowedRoles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "insufficient role")
		})
	}
}
