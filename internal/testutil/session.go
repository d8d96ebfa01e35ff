package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/kinderhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// TestAdminSecret is the admin password accepted by NewTestGate.
const TestAdminSecret = "test-admin-secret"

// NewTestGate returns a Gate with a fixed key and TestAdminSecret.
func NewTestGate(t *testing.T, enforceWrites bool) *auth.Gate {
	t.Helper()
	g, err := auth.NewGate(auth.GateConfig{
		SessionKey:    "test-session-key-must-be-32-chars-long",
		SessionName:   "test-session",
		AdminSecret:   TestAdminSecret,
		EnforceWrites: enforceWrites,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}
	return g
}

// AdminCookies logs in through g and returns the resulting session cookies.
func AdminCookies(t *testing.T, g *auth.Gate) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := g.Login(rec, httptest.NewRequest("POST", "/session/login", nil), TestAdminSecret); err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	return rec.Result().Cookies()
}

// WithCookies adds cookies to r and returns it.
func WithCookies(r *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}
