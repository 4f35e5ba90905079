package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shopsphere/shopsphere-backend/pkg/auth/session"
	"github.com/shopsphere/shopsphere-backend/pkg/config"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
	"github.com/shopsphere/shopsphere-backend/pkg/logger"
)

type stubResolver struct {
	sessions map[string]*session.Principal
}

func (s *stubResolver) Resolve(ctx context.Context, sessionID string) (*session.Principal, error) {
	principal, ok := s.sessions[sessionID]
	if !ok {
		return nil, session.ErrNoSession
	}
	return principal, nil
}

func newAuthHandler(resolver session.Resolver, captured **http.Request) http.Handler {
	cfg := config.SessionConfig{CookieName: "ss_session"}
	logg := logger.New(logger.Options{ServiceName: "middleware-test"})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = r
		w.WriteHeader(http.StatusNoContent)
	})
	return Auth(cfg, resolver, logg)(next)
}

func newStubResolver() (*stubResolver, string, *session.Principal) {
	principal := &session.Principal{
		UserID:   uuid.New(),
		Username: "asha",
		Email:    "asha@example.com",
		Role:     enums.RoleUser,
	}
	token := uuid.NewString()
	return &stubResolver{sessions: map[string]*session.Principal{token: principal}}, token, principal
}

func TestAuthAcceptsHeaderToken(t *testing.T) {
	t.Parallel()
	resolver, token, principal := newStubResolver()
	var captured *http.Request
	handler := newAuthHandler(resolver, &captured)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("X-Session-Token", token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := UserIDFromContext(captured.Context()); got != principal.UserID.String() {
		t.Fatalf("expected user id %s in context, got %q", principal.UserID, got)
	}
	if got := RoleFromContext(captured.Context()); got != string(enums.RoleUser) {
		t.Fatalf("expected user role in context, got %q", got)
	}
}

func TestAuthStripsBearerPrefix(t *testing.T) {
	t.Parallel()
	resolver, token, _ := newStubResolver()
	var captured *http.Request
	handler := newAuthHandler(resolver, &captured)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("X-Session-Token", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestAuthFallsBackToCookie(t *testing.T) {
	t.Parallel()
	resolver, token, _ := newStubResolver()
	var captured *http.Request
	handler := newAuthHandler(resolver, &captured)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.AddCookie(&http.Cookie{Name: "ss_session", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestAuthMissingTokenUnauthorized(t *testing.T) {
	t.Parallel()
	resolver, _, _ := newStubResolver()
	var captured *http.Request
	handler := newAuthHandler(resolver, &captured)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED code, got %q", body.Error.Code)
	}
}

func TestAuthUnknownSessionUnauthorized(t *testing.T) {
	t.Parallel()
	resolver, _, _ := newStubResolver()
	var captured *http.Request
	handler := newAuthHandler(resolver, &captured)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("X-Session-Token", "expired-session")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRoleBlocksNonAdmins(t *testing.T) {
	t.Parallel()
	logg := logger.New(logger.Options{ServiceName: "middleware-test"})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRole(string(enums.RoleAdmin), logg)(next)

	principal := &session.Principal{UserID: uuid.New(), Role: enums.RoleUser}
	req := httptest.NewRequest(http.MethodPost, "/products/add", nil)
	req = req.WithContext(WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	admin := &session.Principal{UserID: uuid.New(), Role: enums.RoleAdmin}
	req = httptest.NewRequest(http.MethodPost, "/products/add", nil)
	req = req.WithContext(WithPrincipal(req.Context(), admin))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin, got %d", rec.Code)
	}
}
