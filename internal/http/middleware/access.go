package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jirani/jirani-auth/internal/httputil"
	"github.com/jirani/jirani-auth/internal/protection"
	"github.com/jirani/jirani-auth/pkg/domain"
)

// Route zones, in classification order.
const (
	ZoneAsset     = "asset"
	ZonePublic    = "public"
	ZoneAuth      = "auth"
	ZoneAdmin     = "admin"
	ZoneAPI       = "api"
	ZoneProtected = "protected"
)

// Outcomes of an access decision.
const (
	OutcomeAllow    = "allow"
	OutcomeRedirect = "redirect"
	OutcomeDeny     = "deny"
)

var (
	assetPrefixes = []string{"/_next", "/favicon", "/sitemap", "/robots", "/manifest"}
	publicRoutes  = []string{"/", "/maintenance", "/metrics"}
	authRoutes    = []string{"/login", "/register"}
)

// AccessDecision is the outcome of classifying a request against the
// route zones. Exactly one of the allow/redirect/deny shapes applies.
type AccessDecision struct {
	Zone     string
	Outcome  string
	Redirect string // target path, when Outcome is redirect
	Status   int    // HTTP status, when Outcome is deny
	NoCache  bool   // allowed admin pages must not be cached
}

func allowDecision(zone string) AccessDecision {
	return AccessDecision{Zone: zone, Outcome: OutcomeAllow}
}

func redirectDecision(zone, target string) AccessDecision {
	return AccessDecision{Zone: zone, Outcome: OutcomeRedirect, Redirect: target}
}

func denyDecision(zone string, status int) AccessDecision {
	return AccessDecision{Zone: zone, Outcome: OutcomeDeny, Status: status}
}

// Classify decides how a request for path should be handled given the
// caller's session state. A session resolution error is treated as
// unauthenticated; outside the public and auth surfaces the login
// redirect then carries error=session_error so the client can surface it.
func Classify(path, userAgent string, sess *domain.SessionUser, sessErr error) AccessDecision {
	if isAsset(path) {
		return allowDecision(ZoneAsset)
	}

	authed := sess != nil && sessErr == nil

	if isPublicRoute(path) {
		return allowDecision(ZonePublic)
	}

	if isAuthRoute(path) {
		if authed {
			return redirectDecision(ZoneAuth, "/dashboard")
		}
		return allowDecision(ZoneAuth)
	}

	// A broken session token sends every non-public surface to login so
	// the client can clear the bad cookie, crawlers excepted. The auth
	// endpoints stay reachable or the cookie could never be replaced.
	if sessErr != nil && !isSelfManagedAPI(path) {
		zone := ZoneProtected
		switch {
		case strings.HasPrefix(path, "/api"):
			zone = ZoneAPI
		case strings.HasPrefix(path, "/admin"):
			zone = ZoneAdmin
		}
		if protection.IsCrawler(userAgent) {
			return allowDecision(zone)
		}
		target := "/login?callbackUrl=" + url.QueryEscape(path) + "&error=session_error"
		return redirectDecision(zone, target)
	}

	if strings.HasPrefix(path, "/api") {
		return classifyAPI(path, authed, sess)
	}

	if strings.HasPrefix(path, "/admin") {
		if !authed {
			return redirectDecision(ZoneAdmin, "/register?callbackUrl="+url.QueryEscape(path))
		}
		if !sess.IsAdmin() {
			return redirectDecision(ZoneAdmin, "/dashboard")
		}
		d := allowDecision(ZoneAdmin)
		d.NoCache = true
		return d
	}

	// Everything else requires a session, but crawlers pass through so
	// protected pages stay indexable.
	if !authed {
		if protection.IsCrawler(userAgent) {
			return allowDecision(ZoneProtected)
		}
		return redirectDecision(ZoneProtected, "/login?callbackUrl="+url.QueryEscape(path))
	}

	return allowDecision(ZoneProtected)
}

// isSelfManagedAPI reports whether path handles its own access control
// even when the session cookie is unreadable.
func isSelfManagedAPI(path string) bool {
	return strings.HasPrefix(path, "/api/auth") || path == "/api/health"
}

func classifyAPI(path string, authed bool, sess *domain.SessionUser) AccessDecision {
	if isSelfManagedAPI(path) {
		return allowDecision(ZoneAPI)
	}

	if strings.HasPrefix(path, "/api/admin") {
		if !authed {
			return denyDecision(ZoneAPI, http.StatusUnauthorized)
		}
		if !sess.IsAdmin() {
			return denyDecision(ZoneAPI, http.StatusForbidden)
		}
		return allowDecision(ZoneAPI)
	}

	if !authed {
		return denyDecision(ZoneAPI, http.StatusUnauthorized)
	}
	return allowDecision(ZoneAPI)
}

func isAsset(path string) bool {
	for _, prefix := range assetPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	// Static files carry an extension; page routes do not.
	return strings.Contains(lastSegment(path), ".")
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func isPublicRoute(path string) bool {
	for _, route := range publicRoutes {
		if path == route {
			return true
		}
	}
	return false
}

func isAuthRoute(path string) bool {
	for _, route := range authRoutes {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

// AccessRecorder records access-control decisions for observability.
type AccessRecorder interface {
	RecordAccessDecision(zone, outcome string)
}

// AccessControl creates middleware that enforces the route zones.
// Must run after Session so the context carries the resolved user.
func AccessControl(recorder AccessRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := GetSessionUser(r.Context())
			sessErr, _ := GetSessionError(r.Context())

			decision := Classify(r.URL.Path, r.UserAgent(), sess, sessErr)
			if recorder != nil {
				recorder.RecordAccessDecision(decision.Zone, decision.Outcome)
			}

			switch decision.Outcome {
			case OutcomeRedirect:
				http.Redirect(w, r, decision.Redirect, http.StatusTemporaryRedirect)
				return
			case OutcomeDeny:
				message := "authentication required"
				if decision.Status == http.StatusForbidden {
					message = "admin access required"
				}
				httputil.Error(w, decision.Status, message)
				return
			}

			if decision.Zone != ZoneAsset {
				w.Header().Set("X-Pathname", r.URL.Path)
			}
			if decision.NoCache {
				w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
				w.Header().Set("Pragma", "no-cache")
				w.Header().Set("Expires", "0")
			}

			next.ServeHTTP(w, r)
		})
	}
}
