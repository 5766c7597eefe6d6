package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/charsheet-go/internal/api/apierr"
	"github.com/mcoot/charsheet-go/internal/identity"
	sharedmw "github.com/mcoot/charsheet-go/internal/middleware"
	"github.com/mcoot/charsheet-go/internal/model"
)

// SessionCookie is the cookie checked when no Authorization header is sent
const SessionCookie = "session"

// TokenVerifier checks a bearer token and returns the login handle it was issued for
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// PrincipalLookup loads the principal for a login handle
type PrincipalLookup interface {
	PrincipalForEmail(ctx context.Context, email string) (model.Principal, error)
}

// Authenticate attaches the authentication result for a bearer token, if one is sent.
// Requests without a token pass through; RequirePrincipal decides whether one is needed.
// A bad Authorization header is rejected outright. A bad session cookie is ignored, so a
// stale cookie never blocks public routes such as login.
func Authenticate(tokens TokenVerifier, users PrincipalLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := resolve(r.Context(), tokens, users, token)
			if err != nil {
				if errors.Is(err, model.ErrInvalidToken) {
					if fromCookie {
						logger.Debug("ignoring stale session cookie", slog.String("error", err.Error()))
						next.ServeHTTP(w, r)
						return
					}
					logger.Debug("token rejected", slog.String("error", err.Error()))
				} else {
					logger.Error("principal lookup failed", slog.String("error", err.Error()))
				}
				apierr.WriteError(w, err)
				return
			}

			sharedmw.SetUserID(r.Context(), principal.ID.String())
			ctx := identity.WithAuthentication(r.Context(), &identity.Authentication{
				Principal: principal,
				Token:     token,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolve verifies a token and loads its principal. Tokens signed for an account
// that no longer exists are reported as model.ErrInvalidToken.
func resolve(ctx context.Context, tokens TokenVerifier, users PrincipalLookup, token string) (model.Principal, error) {
	email, err := tokens.Verify(token)
	if err != nil {
		return model.Principal{}, err
	}

	principal, err := users.PrincipalForEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Principal{}, fmt.Errorf("%w: account no longer exists", model.ErrInvalidToken)
	}
	return principal, err
}

// RequirePrincipal publishes the authenticated principal for the rest of the request.
// The wrapped handler never runs when no principal can be resolved.
func RequirePrincipal() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := identity.Guard(r.Context())
			if err != nil {
				apierr.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request and reports whether
// it came from the session cookie
func extractToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), false
	}

	cookie, err := r.Cookie(SessionCookie)
	if err == nil {
		return cookie.Value, true
	}

	return "", false
}
