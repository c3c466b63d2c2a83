package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/buildcrm/internal/api/response"
	"github.com/edvin/buildcrm/internal/core"
)

type contextKey string

const (
	sessionKey contextKey = "session"
	authErrKey contextKey = "auth_error"
)

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*core.Session, error)
}

// Authorizer checks a session against a capability.
type Authorizer interface {
	Authorize(ctx context.Context, session *core.Session, c core.Capability) error
}

// Authenticate resolves the bearer token, if any, and stores the session in
// the request context. A bad token does not fail the request here; the
// error is kept so Require can report it on protected routes.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			session, err := resolver.Resolve(ctx, token)
			if err != nil {
				ctx = context.WithValue(ctx, authErrKey, err)
			} else {
				ctx = WithSession(ctx, session)
				zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
					return c.Str("principal_id", session.Principal.ID)
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require rejects requests whose session does not satisfy c.
func Require(guard Authorizer, c core.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSession(r.Context())
			if session == nil && !c.IsPublic() {
				if err, ok := r.Context().Value(authErrKey).(error); ok {
					response.WriteServiceError(w, r, err)
					return
				}
			}

			if err := guard.Authorize(r.Context(), session, c); err != nil {
				response.WriteServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func WithSession(ctx context.Context, s *core.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSession returns the session stored by Authenticate, or nil.
func GetSession(ctx context.Context) *core.Session {
	s, _ := ctx.Value(sessionKey).(*core.Session)
	return s
}
