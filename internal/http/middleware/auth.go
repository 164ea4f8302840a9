package middleware

import (
	"context"
	"net/http"

	"github.com/jirani/jirani-auth/internal/httputil"
	"github.com/jirani/jirani-auth/pkg/auth"
	"github.com/jirani/jirani-auth/pkg/domain"
)

type contextKey string

const (
	// SessionUserKey is the context key for the resolved session user.
	SessionUserKey contextKey = "session_user"
	// SessionErrorKey is the context key for a session resolution error.
	SessionErrorKey contextKey = "session_error"
)

// Session creates middleware that resolves the session cookie into a
// SessionUser on the request context. It never rejects the request:
// downstream middleware and handlers decide what an absent or invalid
// session means for their route.
func Session(sessions *auth.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := httputil.GetSessionToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			user, err := sessions.ResolveSession(token)
			if err != nil {
				ctx = context.WithValue(ctx, SessionErrorKey, err)
			} else {
				ctx = context.WithValue(ctx, SessionUserKey, user)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth creates middleware that rejects requests without a valid
// session. Must run after Session.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetSessionUser(r.Context()); !ok {
				httputil.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionUser extracts the session user from the request context.
func GetSessionUser(ctx context.Context) (*domain.SessionUser, bool) {
	user, ok := ctx.Value(SessionUserKey).(*domain.SessionUser)
	return user, ok
}

// GetSessionError extracts a session resolution error from the request
// context, if the request carried a session token that failed to resolve.
func GetSessionError(ctx context.Context) (error, bool) {
	err, ok := ctx.Value(SessionErrorKey).(error)
	return err, ok
}
