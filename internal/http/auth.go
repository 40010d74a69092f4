package httpapi

import (
	"context"
	"net/http"
	"strings"

	"esgishoma-backend-go/internal/services"
)

type contextKey string

const (
	ctxToken   contextKey = "token"
	ctxSession contextKey = "session"
)

// WithAdminSession authenticates the bearer token and requires the admin
// role. The raw token travels down in the context because the service layer
// re-validates it on every mutation.
func WithAdminSession(tokens services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			session, err := tokens.RequireAdmin(tokenStr)
			if err != nil {
				WriteServiceError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxToken, tokenStr)
			ctx = context.WithValue(ctx, ctxSession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TokenFromContext(r *http.Request) string {
	if value, ok := r.Context().Value(ctxToken).(string); ok {
		return value
	}
	return ""
}

func SessionFromContext(r *http.Request) *services.Session {
	if value, ok := r.Context().Value(ctxSession).(*services.Session); ok {
		return value
	}
	return nil
}
