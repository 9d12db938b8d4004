// Package edge resolves the signed-in user for requests reaching the web
// server, before any page handler runs.
package edge

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go-auth-portal/internal/client"
	"go-auth-portal/internal/model"
)

type UserResolver interface {
	UserForToken(ctx context.Context, token string) (model.PublicUser, error)
}

type contextKey struct{}

func WithUser(ctx context.Context, user model.PublicUser) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

func UserFromContext(ctx context.Context) (model.PublicUser, bool) {
	user, ok := ctx.Value(contextKey{}).(model.PublicUser)
	return user, ok
}

// Middleware exchanges the session cookie for the current user. It never
// blocks a request: route guards decide what an anonymous visitor may see.
// A cookie the API rejects as unauthorized is deleted.
func Middleware(users UserResolver, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(model.AuthCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := UserFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			lookupCtx := client.WithForwardedFor(r.Context(), forwardedChain(r))
			user, err := users.UserForToken(lookupCtx, cookie.Value)
			if err != nil {
				if client.IsUnauthorized(err) {
					slog.Debug("clearing rejected session cookie", "path", r.URL.Path)
					clearCookie(w, secureCookies)
				} else {
					slog.Warn("user lookup failed", "error", err, "path", r.URL.Path)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// forwardedChain appends the visitor's address to any X-Forwarded-For chain
// the request already carries, the way httputil.ReverseProxy does for /api.
func forwardedChain(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	prior := r.Header.Values("X-Forwarded-For")
	if len(prior) == 0 {
		return host
	}
	if host == "" {
		return strings.Join(prior, ", ")
	}
	return strings.Join(prior, ", ") + ", " + host
}

func clearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     model.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
