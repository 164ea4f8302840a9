// Package github handles the GitHub OAuth sign-in flow.
package github

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jirani/jirani-auth/internal/httputil"
	"github.com/jirani/jirani-auth/internal/location"
	"github.com/jirani/jirani-auth/internal/metrics"
	"github.com/jirani/jirani-auth/internal/protection"
	"github.com/jirani/jirani-auth/pkg/auth"
	"github.com/jirani/jirani-auth/pkg/domain"
)

// Handler handles GitHub OAuth endpoints.
type Handler struct {
	logger       *slog.Logger
	provider     *auth.GitHubProvider
	authService  *auth.Service
	sessions     *auth.SessionService
	gate         protection.Gate
	metrics      metrics.Recorder
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new GitHub handler.
func NewHandler(
	logger *slog.Logger,
	provider *auth.GitHubProvider,
	authService *auth.Service,
	sessions *auth.SessionService,
	gate protection.Gate,
	recorder metrics.Recorder,
	cookieConfig httputil.CookieConfig,
) *Handler {
	return &Handler{
		logger:       logger,
		provider:     provider,
		authService:  authService,
		sessions:     sessions,
		gate:         gate,
		metrics:      recorder,
		cookieConfig: cookieConfig,
	}
}

// generateState generates a cryptographically secure random state value.
func generateState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Start initiates the GitHub OAuth flow.
// GET /api/auth/github?callbackUrl=<app_return_path>
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	decision := h.gate.Check(location.ClientIP(r), r.UserAgent())
	if !decision.Allowed {
		h.metrics.RecordProtectionDenial(decision.Reason)
		h.loginError(w, r, domain.CodeAccessDenied)
		return
	}

	callbackURL := safeReturnPath(r.URL.Query().Get("callbackUrl"))

	// The state cookie carries both the CSRF state and the post-login
	// return path through the provider round trip.
	state := generateState()
	httputil.SetOAuthStateCookie(w, state+"|"+callbackURL, h.cookieConfig)

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusFound)
}

// Callback handles the GitHub OAuth callback.
// GET /api/auth/github/callback?code=...&state=...
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	// The state cookie is single-use regardless of outcome. Clearing it
	// here, before any redirect writes the header block, keeps the
	// Set-Cookie on every response path.
	httputil.ClearOAuthStateCookie(w, h.cookieConfig)

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("provider returned error", "provider", domain.ProviderGitHub, "error", errParam)
		h.metrics.RecordSignIn("oauth", "provider_error")
		h.loginError(w, r, domain.CodeOAuthSignin)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		h.loginError(w, r, domain.CodeOAuthCallback)
		return
	}

	storedState, callbackURL, ok := readStateCookie(r)
	if !ok || storedState != state {
		h.logger.Warn("oauth state mismatch", "provider", domain.ProviderGitHub)
		h.metrics.RecordSignIn("oauth", "state_mismatch")
		h.loginError(w, r, domain.CodeOAuthCallback)
		return
	}

	profile, tokens, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("code exchange failed", "provider", domain.ProviderGitHub, "error", err)
		h.metrics.RecordSignIn("oauth", "exchange_error")
		h.loginError(w, r, domain.CodeOAuthCallback)
		return
	}

	if profile.Email == "" {
		h.metrics.RecordSignIn("oauth", "no_email")
		h.loginError(w, r, domain.CodeEmailMismatch)
		return
	}

	identity, created, err := h.authService.AuthenticateOAuth(r.Context(), profile, tokens, location.ClientIP(r))
	if err != nil {
		h.logger.Error("oauth authentication failed", "provider", domain.ProviderGitHub, "error", err)
		h.metrics.RecordSignIn("oauth", "error")
		h.loginError(w, r, domain.CodeOAuthCallback)
		return
	}

	if created {
		h.metrics.RecordOAuthCreate(profile.Provider)
		h.logger.Info("user created from oauth", "provider", profile.Provider, "user_id", identity.ID)
	} else {
		h.metrics.RecordOAuthLink(profile.Provider)
	}

	token, err := h.sessions.IssueSession(identity)
	if err != nil {
		h.logger.Error("failed to issue session", "error", err, "user_id", identity.ID)
		h.loginError(w, r, domain.CodeConfiguration)
		return
	}

	httputil.SetSessionCookie(w, token, h.sessions.TTL(), h.cookieConfig)
	h.metrics.RecordSignIn("oauth", "success")

	http.Redirect(w, r, callbackURL, http.StatusFound)
}

// loginError redirects the browser back to the login page carrying an
// error code the client maps to a user-facing message.
func (h *Handler) loginError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(code), http.StatusFound)
}

// readStateCookie splits the state cookie into its CSRF state and
// return-path halves.
func readStateCookie(r *http.Request) (state, callbackURL string, ok bool) {
	value, ok := httputil.GetOAuthState(r)
	if !ok {
		return "", "", false
	}
	state, callbackURL, found := strings.Cut(value, "|")
	if !found || state == "" {
		return "", "", false
	}
	return state, safeReturnPath(callbackURL), true
}

// safeReturnPath restricts post-login redirects to same-origin relative
// paths.
func safeReturnPath(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/dashboard"
	}
	// Browsers normalize backslashes to slashes, so /\evil.com escapes
	// the origin just like //evil.com.
	if strings.ContainsRune(target, '\\') {
		return "/dashboard"
	}
	return target
}
