package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jirani/jirani-auth/pkg/domain"
)

const chromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36"

func userSession() *domain.SessionUser {
	return &domain.SessionUser{ID: "u1", Email: "user@example.com", Role: domain.RoleUser, Status: domain.StatusActive}
}

func adminSession() *domain.SessionUser {
	return &domain.SessionUser{ID: "a1", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.StatusActive}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		userAgent    string
		sess         *domain.SessionUser
		sessErr      error
		wantZone     string
		wantOutcome  string
		wantRedirect string
		wantStatus   int
	}{
		// Assets bypass everything.
		{"next asset", "/_next/static/chunk.js", chromeUA, nil, nil, ZoneAsset, OutcomeAllow, "", 0},
		{"favicon", "/favicon.ico", chromeUA, nil, nil, ZoneAsset, OutcomeAllow, "", 0},
		{"sitemap", "/sitemap.xml", chromeUA, nil, nil, ZoneAsset, OutcomeAllow, "", 0},
		{"dot extension", "/images/logo.png", chromeUA, nil, nil, ZoneAsset, OutcomeAllow, "", 0},

		// Public pages never gate.
		{"home anonymous", "/", chromeUA, nil, nil, ZonePublic, OutcomeAllow, "", 0},
		{"maintenance anonymous", "/maintenance", chromeUA, nil, nil, ZonePublic, OutcomeAllow, "", 0},
		{"home authed", "/", chromeUA, userSession(), nil, ZonePublic, OutcomeAllow, "", 0},

		// Auth pages flip on session state.
		{"login anonymous", "/login", chromeUA, nil, nil, ZoneAuth, OutcomeAllow, "", 0},
		{"register anonymous", "/register", chromeUA, nil, nil, ZoneAuth, OutcomeAllow, "", 0},
		{"login authed", "/login", chromeUA, userSession(), nil, ZoneAuth, OutcomeRedirect, "/dashboard", 0},
		{"register authed", "/register", chromeUA, adminSession(), nil, ZoneAuth, OutcomeRedirect, "/dashboard", 0},

		// Admin pages: the full matrix.
		{"admin anonymous", "/admin", chromeUA, nil, nil, ZoneAdmin, OutcomeRedirect, "/register?callbackUrl=%2Fadmin", 0},
		{"admin non-admin", "/admin", chromeUA, userSession(), nil, ZoneAdmin, OutcomeRedirect, "/dashboard", 0},
		{"admin admin", "/admin", chromeUA, adminSession(), nil, ZoneAdmin, OutcomeAllow, "", 0},

		// API zones.
		{"auth api anonymous", "/api/auth/login", chromeUA, nil, nil, ZoneAPI, OutcomeAllow, "", 0},
		{"health anonymous", "/api/health", chromeUA, nil, nil, ZoneAPI, OutcomeAllow, "", 0},
		{"admin api anonymous", "/api/admin/users", chromeUA, nil, nil, ZoneAPI, OutcomeDeny, "", http.StatusUnauthorized},
		{"admin api non-admin", "/api/admin/users", chromeUA, userSession(), nil, ZoneAPI, OutcomeDeny, "", http.StatusForbidden},
		{"admin api admin", "/api/admin/users", chromeUA, adminSession(), nil, ZoneAPI, OutcomeAllow, "", 0},
		{"other api anonymous", "/api/posts", chromeUA, nil, nil, ZoneAPI, OutcomeDeny, "", http.StatusUnauthorized},
		{"other api authed", "/api/posts", chromeUA, userSession(), nil, ZoneAPI, OutcomeAllow, "", 0},

		// Default protected pages.
		{"dashboard anonymous", "/dashboard", chromeUA, nil, nil, ZoneProtected, OutcomeRedirect, "/login?callbackUrl=%2Fdashboard", 0},
		{"dashboard authed", "/dashboard", chromeUA, userSession(), nil, ZoneProtected, OutcomeAllow, "", 0},
		{"deep page anonymous", "/groups/nairobi", chromeUA, nil, nil, ZoneProtected, OutcomeRedirect, "/login?callbackUrl=%2Fgroups%2Fnairobi", 0},

		// Crawlers pass through protected pages.
		{"googlebot on dashboard", "/dashboard", "Mozilla/5.0 (compatible; Googlebot/2.1)", nil, nil, ZoneProtected, OutcomeAllow, "", 0},
		{"whatsapp preview", "/groups/nairobi", "WhatsApp/2.23.20", nil, nil, ZoneProtected, OutcomeAllow, "", 0},

		// Operational endpoints stay scrapeable.
		{"metrics anonymous", "/metrics", "Prometheus/2.50.0", nil, nil, ZonePublic, OutcomeAllow, "", 0},

		// Session resolution failure sends every gated surface to login.
		{"broken session on protected", "/dashboard", chromeUA, nil, domain.ErrInvalidToken, ZoneProtected, OutcomeRedirect, "/login?callbackUrl=%2Fdashboard&error=session_error", 0},
		{"broken session on admin", "/admin", chromeUA, nil, domain.ErrInvalidToken, ZoneAdmin, OutcomeRedirect, "/login?callbackUrl=%2Fadmin&error=session_error", 0},
		{"broken session on api", "/api/posts", chromeUA, nil, domain.ErrInvalidToken, ZoneAPI, OutcomeRedirect, "/login?callbackUrl=%2Fapi%2Fposts&error=session_error", 0},
		{"broken session on public", "/", chromeUA, nil, domain.ErrInvalidToken, ZonePublic, OutcomeAllow, "", 0},
		{"broken session on login page", "/login", chromeUA, nil, domain.ErrInvalidToken, ZoneAuth, OutcomeAllow, "", 0},
		{"broken session on auth api", "/api/auth/login", chromeUA, nil, domain.ErrInvalidToken, ZoneAPI, OutcomeAllow, "", 0},
		{"broken session bot on protected", "/dashboard", "Googlebot/2.1", nil, domain.ErrInvalidToken, ZoneProtected, OutcomeAllow, "", 0},
		{"broken session bot on admin", "/admin", "Googlebot/2.1", nil, domain.ErrInvalidToken, ZoneAdmin, OutcomeAllow, "", 0},
		{"broken session bot on api", "/api/posts", "Googlebot/2.1", nil, domain.ErrInvalidToken, ZoneAPI, OutcomeAllow, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.path, tt.userAgent, tt.sess, tt.sessErr)

			if got.Zone != tt.wantZone {
				t.Errorf("Zone = %q, want %q", got.Zone, tt.wantZone)
			}
			if got.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", got.Outcome, tt.wantOutcome)
			}
			if got.Redirect != tt.wantRedirect {
				t.Errorf("Redirect = %q, want %q", got.Redirect, tt.wantRedirect)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestClassify_AdminAllowIsNoCache(t *testing.T) {
	got := Classify("/admin", chromeUA, adminSession(), nil)
	if !got.NoCache {
		t.Error("admin allow decision should carry NoCache")
	}
	if other := Classify("/dashboard", chromeUA, userSession(), nil); other.NoCache {
		t.Error("non-admin allow decision should not carry NoCache")
	}
}

func serveAccess(t *testing.T, path, userAgent string, sess *domain.SessionUser, sessErr error) *httptest.ResponseRecorder {
	t.Helper()

	handler := AccessControl(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("User-Agent", userAgent)
	ctx := req.Context()
	if sess != nil {
		ctx = context.WithValue(ctx, SessionUserKey, sess)
	}
	if sessErr != nil {
		ctx = context.WithValue(ctx, SessionErrorKey, sessErr)
	}
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestAccessControl_RedirectResponse(t *testing.T) {
	w := serveAccess(t, "/dashboard", chromeUA, nil, nil)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login?callbackUrl=") {
		t.Errorf("Location = %q, want login redirect with callbackUrl", loc)
	}
}

func TestAccessControl_AllowedSetsPathname(t *testing.T) {
	w := serveAccess(t, "/dashboard", chromeUA, userSession(), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("X-Pathname"); got != "/dashboard" {
		t.Errorf("X-Pathname = %q, want /dashboard", got)
	}
}

func TestAccessControl_AdminNoCacheHeaders(t *testing.T) {
	w := serveAccess(t, "/admin", chromeUA, adminSession(), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := w.Header().Get("Pragma"); got != "no-cache" {
		t.Errorf("Pragma = %q", got)
	}
	if got := w.Header().Get("Expires"); got != "0" {
		t.Errorf("Expires = %q", got)
	}
}

func TestAccessControl_APIDenial(t *testing.T) {
	w := serveAccess(t, "/api/posts", chromeUA, nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	w = serveAccess(t, "/api/admin/users", chromeUA, userSession(), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestAccessControl_AssetSkipsPathname(t *testing.T) {
	w := serveAccess(t, "/_next/static/chunk.js", chromeUA, nil, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("X-Pathname"); got != "" {
		t.Errorf("X-Pathname = %q, want unset for assets", got)
	}
}
