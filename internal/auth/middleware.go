package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Middleware validates JWTs and enforces the policy.
type Middleware struct {
	Secret []byte
	Policy Policy
	logger zerolog.Logger
}

// NewMiddleware constructs the middleware.
func NewMiddleware(secret []byte, policy Policy, logger zerolog.Logger) *Middleware {
	return &Middleware{Secret: secret, Policy: policy, logger: logger}
}

// Wrap authenticates requests the policy covers.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, ok := m.Policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := ParseJWT(extractBearer(r), m.Secret)
		if err != nil {
			m.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("auth: rejected token")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		role, _ := NormalizeRole(claims.Role)
		if !RoleAtLeast(role, required) {
			m.logger.Info().
				Str("path", r.URL.Path).
				Str("subject", claims.Subject).
				Str("role", string(role)).
				Str("required", string(required)).
				Msg("auth: forbidden")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		ctx := WithIdentity(r.Context(), claims.TenantID, role, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearer(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
