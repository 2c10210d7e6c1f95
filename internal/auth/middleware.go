package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elijahtye/Tonr/internal/domain"
)

// UserProvisioner resolves an identity-provider subject to a local account,
// creating the account on first contact.
//
// Implemented by service.UserService.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, subject, email, name string) (*domain.User, error)
}

// Middleware provides bearer-token authentication middleware.
//
// Create one instance and use its methods as middleware.
type Middleware struct {
	verifier *Verifier
	users    UserProvisioner
	logger   *slog.Logger
}

// NewMiddleware creates a new auth Middleware instance.
func NewMiddleware(verifier *Verifier, users UserProvisioner, logger *slog.Logger) *Middleware {
	return &Middleware{
		verifier: verifier,
		users:    users,
		logger:   logger,
	}
}

// WithUser is middleware that attempts to authenticate the request from its
// Authorization header.
//
// This middleware:
// 1. Extracts the bearer token, if any
// 2. Verifies the token against the identity provider's issuer/audience
// 3. Loads (or provisions on first contact) the local account for the subject
// 4. Stores the user in the request context
// 5. Continues to the next handler regardless of authentication status
//
// Requests without a token, or with an invalid one, pass through without a
// user in context. Pair with RequireUser on routes that need one.
func (m *Middleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Debug("rejected bearer token",
				"path", r.URL.Path,
				"error", err)
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.EnsureUser(r.Context(), claims.Subject, claims.Email, claims.Name)
		if err != nil {
			m.logger.Error("failed to resolve account for verified token",
				"subject", claims.Subject,
				"error", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := SetUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser is middleware that requires an authenticated user.
//
// Must run AFTER WithUser in the middleware chain. Unauthenticated requests
// receive a 401 JSON error.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
