package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jirani/jirani-auth/internal/http/middleware"
	"github.com/jirani/jirani-auth/internal/httputil"
	"github.com/jirani/jirani-auth/pkg/domain"
)

func TestSession_Anonymous(t *testing.T) {
	handler := NewHandler(httputil.DefaultCookieConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	rec := httptest.NewRecorder()
	handler.Session(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["user"] != nil {
		t.Errorf("user = %v, want null for anonymous query", body["user"])
	}
}

func TestSession_Authenticated(t *testing.T) {
	handler := NewHandler(httputil.DefaultCookieConfig())

	sess := &domain.SessionUser{
		ID:           "5f1c2a34-0000-0000-0000-000000000001",
		Email:        "asha@example.com",
		Name:         "Asha Mwangi",
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		Country:      "KE",
		ReferralCode: "k3n5w8p2",
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.SessionUserKey, sess))
	rec := httptest.NewRecorder()
	handler.Session(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		User *SessionResponse `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.User == nil {
		t.Fatal("user = null, want session view")
	}
	if body.User.Email != "asha@example.com" {
		t.Errorf("email = %q, want asha@example.com", body.User.Email)
	}
	if body.User.Country != "KE" {
		t.Errorf("country = %q, want KE", body.User.Country)
	}
}

func TestLogout_ClearsCookieAndRedirectsHome(t *testing.T) {
	handler := NewHandler(httputil.DefaultCookieConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["redirect"] != "/" {
		t.Errorf("redirect = %q, want /", body["redirect"])
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == httputil.SessionCookieName && c.MaxAge < 0 && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie was not cleared")
	}

	if !strings.Contains(rec.Header().Get("Set-Cookie"), httputil.SessionCookieName) {
		t.Error("no Set-Cookie header for the session cookie")
	}
}
