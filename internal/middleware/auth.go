// Package middleware hosts authentication, logging, and rate limiting
// middleware for the screening API.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"amlscreen/internal/auth"
	"amlscreen/internal/domain"
)

// contextKey avoids collisions when storing values in request contexts.
type contextKey string

const (
	ctxUserIDKey contextKey = "user_id"
	ctxEmailKey  contextKey = "email"
	ctxRoleKey   contextKey = "role"
	ctxAPIKeyKey contextKey = "api_key"
)

// TokenValidator verifies a bearer JWT.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// KeyValidator resolves a raw API key.
type KeyValidator interface {
	ValidateKey(ctx context.Context, rawKey string) (*domain.APIKey, error)
}

// AuthMiddleware accepts either a bearer JWT or an X-API-Key header and
// injects the caller identity into the request context.
type AuthMiddleware struct {
	tokens TokenValidator
	keys   KeyValidator
}

func NewAuthMiddleware(tokens TokenValidator, keys KeyValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, keys: keys}
}

// Authenticate enforces caller authentication.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rawKey := r.Header.Get("X-API-Key"); rawKey != "" && m.keys != nil {
			key, err := m.keys.ValidateKey(r.Context(), rawKey)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}
			ctx := context.WithValue(r.Context(), ctxAPIKeyKey, key.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if strings.TrimSpace(authHeader) == "" {
			jsonError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			jsonError(w, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, ctxEmailKey, claims.Email)
		ctx = context.WithValue(ctx, ctxRoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// EmailFromContext returns the authenticated operator's email.
func EmailFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxEmailKey).(string)
	return s, ok
}

// RoleFromContext returns the authenticated operator's role. Requests
// authenticated with an API key carry no role.
func RoleFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxRoleKey).(string)
	return s, ok
}

// APIKeyNameFromContext returns the calling API key's name, when the
// request authenticated with one.
func APIKeyNameFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxAPIKeyKey).(string)
	return s, ok
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(fmt.Sprintf(`{"error":"%s"}`, message)))
}

// CORS applies cross-origin headers, restricted to CORS_ALLOWED_ORIGINS
// when configured.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed := os.Getenv("CORS_ALLOWED_ORIGINS")
		origin := r.Header.Get("Origin")
		if strings.TrimSpace(allowed) != "" {
			for _, o := range strings.Split(allowed, ",") {
				if strings.EqualFold(strings.TrimSpace(o), origin) {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
					break
				}
			}
		} else if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-API-Key")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
