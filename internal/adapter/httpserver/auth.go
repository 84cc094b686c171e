package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	obsctx "github.com/fairyhunter13/smart-resume-matcher/internal/observability"
)

type userKey struct{}

func withUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the authenticated user stored by RequireAuth.
func UserFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(domain.User)
	return u, ok
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireAuth resolves the bearer token into a user and stores it in the
// request context.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, r, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized), nil)
			return
		}
		u, err := s.Auth.Authenticate(r.Context(), tok)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, r, err, nil)
			return
		}
		ctx := withUser(r.Context(), u)
		ctx = obsctx.WithUser(ctx, u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin users. It must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r.Context())
		if !ok {
			writeError(w, r, fmt.Errorf("%w: not authenticated", domain.ErrUnauthorized), nil)
			return
		}
		if !u.IsAdmin() {
			writeError(w, r, fmt.Errorf("%w: admin access only", domain.ErrForbidden), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit charges the authenticated user one token from scope per request.
// Limiter failures let the request through.
func (s *Server) RateLimit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if s.Limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := r.RemoteAddr
			if u, ok := UserFrom(r.Context()); ok {
				subject = "user:" + strconv.FormatInt(u.ID, 10)
			}
			allowed, retryAfter, err := s.Limiter.Allow(r.Context(), scope, subject, 1)
			if err != nil {
				LoggerFrom(r).Warn("rate limiter unavailable", "scope", scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				secs := int(retryAfter.Seconds())
				if retryAfter > 0 && secs == 0 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				observability.RecordRateLimited(scope)
				writeError(w, r, fmt.Errorf("%w: too many %s requests", domain.ErrRateLimited, scope),
					map[string]any{"retry_after_seconds": secs})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// currentUser is the user stored by RequireAuth. Handlers behind RequireAuth
// always have one.
func currentUser(r *http.Request) domain.User {
	u, _ := UserFrom(r.Context())
	return u
}
