package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go-auth-portal/internal/model"
)

type tokenVerifier interface {
	VerifyToken(tokenString string) (*model.AuthClaims, error)
}

type revocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type contextKey string

const authContextKey contextKey = "auth_context"

type AuthMiddleware struct {
	verifier tokenVerifier
	revoked  revocationChecker
}

func NewAuthMiddleware(verifier tokenVerifier, revoked revocationChecker) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, revoked: revoked}
}

// RequireAuth rejects requests without a valid, unrevoked session token and
// stores the resulting model.AuthContext for downstream handlers.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		claims, err := m.verifier.VerifyToken(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		if m.revoked != nil && claims.TokenID != "" {
			revoked, err := m.revoked.IsRevoked(r.Context(), claims.TokenID)
			if err != nil {
				slog.Error("revocation lookup failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
				writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
				return
			}
			if revoked {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token has been revoked")
				return
			}
		}

		ctx := WithAuth(r.Context(), model.AuthContext{UserID: claims.UserID, Claims: claims, Token: token})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		if token := strings.TrimSpace(header[7:]); token != "" {
			return token
		}
	}

	if cookie, err := r.Cookie(model.AuthCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}

	return ""
}

func WithAuth(ctx context.Context, auth model.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}

func AuthFromContext(ctx context.Context) (model.AuthContext, bool) {
	auth, ok := ctx.Value(authContextKey).(model.AuthContext)
	return auth, ok
}
