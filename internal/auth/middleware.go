package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/google/uuid"
)

type contextKey string

const principalKey contextKey = "auth_principal"

// PrincipalFromContext extracts the authenticated principal from the request
// context. The zero Principal means unauthenticated.
func PrincipalFromContext(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalKey).(domain.Principal)
	return p
}

// Authenticate returns middleware that validates bearer tokens and stores the
// resulting principal in the request context.
func Authenticate(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := extractPrincipal(r, jwtMgr)
			if err != nil {
				http.Error(w, `{"code":"UNAUTHORIZED","message":"`+err.Error()+`"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that rejects non-admin principals. Must run
// after Authenticate.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal.UserID == uuid.Nil {
				http.Error(w, `{"code":"UNAUTHORIZED","message":"no auth context"}`, http.StatusUnauthorized)
				return
			}
			if !principal.IsAdmin() {
				http.Error(w, `{"code":"FORBIDDEN","message":"admin role required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractPrincipal(r *http.Request, jwtMgr *JWTManager) (domain.Principal, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return domain.Principal{}, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return domain.Principal{}, fmt.Errorf("invalid Authorization format")
	}

	claims, err := jwtMgr.ValidateToken(parts[1])
	if err != nil {
		return domain.Principal{}, err
	}

	return claims.Principal()
}
