package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/tasktracker/internal/auth"
	"github.com/pkordes/tasktracker/internal/domain"
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

// tokenSchemes are the accepted Authorization header keywords. "Token" is
// kept for clients written against the DRF token scheme.
var tokenSchemes = []string{"Bearer", "Token"}

// NewAuthenticator returns a middleware that requires a valid
// "Authorization: Bearer <token>" header. The resolved user is stored in the
// request context (see auth.UserFromContext). Requests without a usable
// token are answered with 401 before reaching the next handler.
func NewAuthenticator(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "authentication credentials were not provided")
				return
			}

			u, err := a.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					unauthorized(w, "invalid or expired token")
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(errorEnvelope("internal_error", "an unexpected error occurred"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	for _, s := range tokenSchemes {
		if strings.EqualFold(scheme, s) {
			return token, true
		}
	}
	return "", false
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errorEnvelope("not_authenticated", msg))
}

// errorEnvelope matches the error body written by the handler package.
func errorEnvelope(code, msg string) map[string]map[string]string {
	return map[string]map[string]string{"error": {"code": code, "message": msg}}
}
