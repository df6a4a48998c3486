package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var testSecret = []byte("test-secret")

func wrapOK(t *testing.T) http.Handler {
	t.Helper()
	mw := NewMiddleware(testSecret, NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil), zerolog.Nop())
	return mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if TenantIDFromContext(r.Context()) == "" && r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func mustToken(t *testing.T, role Role, ttl time.Duration) string {
	t.Helper()
	token, err := IssueJWT(testSecret, "tenant-a", role, "user-1", ttl)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func serve(t *testing.T, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	wrapOK(t).ServeHTTP(resp, req)
	return resp.Code
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	if code := serve(t, http.MethodGet, "/api/v1/tariffs", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthMiddleware_ExemptHealthz(t *testing.T) {
	if code := serve(t, http.MethodGet, "/healthz", ""); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestAuthMiddleware_ViewerForbiddenParse(t *testing.T) {
	token := mustToken(t, RoleViewer, time.Hour)
	if code := serve(t, http.MethodPost, "/api/v1/tariffs/parse", token); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestAuthMiddleware_OperatorForbiddenPlanPublish(t *testing.T) {
	token := mustToken(t, RoleOperator, time.Hour)
	if code := serve(t, http.MethodPost, "/api/v1/schedules/plans", token); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestAuthMiddleware_ViewerCanMerge(t *testing.T) {
	token := mustToken(t, RoleViewer, time.Hour)
	if code := serve(t, http.MethodPost, "/api/v1/schedules/merge", token); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	token := mustToken(t, RoleAdmin, -time.Minute)
	if code := serve(t, http.MethodGet, "/api/v1/tariffs", token); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestIssueJWTValidates(t *testing.T) {
	if _, err := IssueJWT(nil, "tenant", RoleViewer, "", time.Hour); err != ErrEmptySecret {
		t.Fatalf("expected empty secret error, got %v", err)
	}
	if _, err := IssueJWT(testSecret, "tenant", Role("root"), "", time.Hour); err != ErrInvalidRole {
		t.Fatalf("expected invalid role error, got %v", err)
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleAtLeast(RoleAdmin, RoleOperator) {
		t.Fatalf("admin should satisfy operator")
	}
	if RoleAtLeast(RoleViewer, RoleOperator) {
		t.Fatalf("viewer should not satisfy operator")
	}
	if RoleAtLeast(Role(""), Role("")) {
		t.Fatalf("empty role should never pass")
	}
}
