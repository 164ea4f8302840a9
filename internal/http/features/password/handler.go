// Package password handles credential registration and sign-in.
package password

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jirani/jirani-auth/internal/http/middleware"
	"github.com/jirani/jirani-auth/internal/httputil"
	"github.com/jirani/jirani-auth/internal/location"
	"github.com/jirani/jirani-auth/internal/metrics"
	"github.com/jirani/jirani-auth/internal/protection"
	"github.com/jirani/jirani-auth/pkg/auth"
	"github.com/jirani/jirani-auth/pkg/domain"

	"github.com/google/uuid"
)

// Handler handles password authentication endpoints.
type Handler struct {
	logger       *slog.Logger
	authService  *auth.Service
	sessions     *auth.SessionService
	gate         protection.Gate
	metrics      metrics.Recorder
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new password handler.
func NewHandler(
	logger *slog.Logger,
	authService *auth.Service,
	sessions *auth.SessionService,
	gate protection.Gate,
	recorder metrics.Recorder,
	cookieConfig httputil.CookieConfig,
) *Handler {
	return &Handler{
		logger:       logger,
		authService:  authService,
		sessions:     sessions,
		gate:         gate,
		metrics:      recorder,
		cookieConfig: cookieConfig,
	}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	ReferralCode    string `json:"referralCode,omitempty"`
}

// LoginRequest represents a credential sign-in request.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

// SetupPasswordRequest represents a password setup request from an
// OAuth-only account.
type SetupPasswordRequest struct {
	Password string `json:"password"`
}

// Register handles user registration.
// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.checkProtection(w, r) {
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.SignUp(r.Context(), auth.SignUpInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		ReferralCode:    req.ReferralCode,
	}, location.ClientIP(r))
	if err != nil {
		var validationErr *auth.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.metrics.RecordSignUp("invalid")
			httputil.FieldErrors(w, http.StatusBadRequest, "validation failed", validationErr.Fields)
		case errors.Is(err, domain.ErrEmailTaken):
			h.metrics.RecordSignUp("email_taken")
			httputil.Error(w, http.StatusConflict, "an account with this email already exists")
		default:
			h.logger.Error("registration failed", "error", err)
			h.metrics.RecordSignUp("error")
			httputil.Error(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	h.metrics.RecordSignUp("success")
	h.logger.Info("user registered", "user_id", result.UserID, "referral_applied", result.ReferralApplied)

	httputil.JSON(w, http.StatusCreated, map[string]any{
		"id":    result.UserID,
		"email": result.Email,
		"name":  result.Name,
		"tier":  result.InitialTier,
	})
}

// Login handles credential sign-in.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.checkProtection(w, r) {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	identity, err := h.authService.AuthenticateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOAuthOnlyUser):
			h.metrics.RecordSignIn("credentials", "oauth_only")
			httputil.Error(w, http.StatusUnauthorized, "this account uses social sign-in. Sign in with your provider, then set a password in settings")
		case errors.Is(err, domain.ErrInvalidCredentials):
			h.metrics.RecordSignIn("credentials", "invalid")
			httputil.Error(w, http.StatusUnauthorized, domain.ErrorMessage(domain.CodeCredentialsSignin))
		default:
			h.logger.Error("credential sign-in failed", "error", err)
			h.metrics.RecordSignIn("credentials", "error")
			httputil.Error(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	token, err := h.sessions.IssueSession(identity)
	if err != nil {
		h.logger.Error("failed to issue session", "error", err, "user_id", identity.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to issue session")
		return
	}

	httputil.SetSessionCookie(w, token, h.sessions.TTL(), h.cookieConfig)
	h.metrics.RecordSignIn("credentials", "success")

	httputil.JSON(w, http.StatusOK, map[string]any{
		"redirect": SafeRedirect(req.CallbackURL),
		"user": map[string]any{
			"id":    identity.ID,
			"email": identity.Email,
			"name":  identity.Name,
			"role":  identity.Role,
		},
	})
}

// SetupPassword sets a password on an authenticated OAuth-only account.
// POST /api/auth/setup-password
func (h *Handler) SetupPassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionUser(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, domain.ErrorMessage(domain.CodeSessionRequired))
		return
	}

	var req SetupPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.Parse(sess.ID)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "invalid session subject")
		return
	}

	if err := h.authService.SetupPassword(r.Context(), userID, req.Password); err != nil {
		var validationErr *auth.ValidationError
		switch {
		case errors.As(err, &validationErr):
			httputil.FieldErrors(w, http.StatusBadRequest, "validation failed", validationErr.Fields)
		case errors.Is(err, domain.ErrUserNotFound):
			httputil.Error(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("password setup failed", "error", err, "user_id", sess.ID)
			httputil.Error(w, http.StatusInternalServerError, "password setup failed")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "password set successfully"})
}

// checkProtection applies the abuse gate and writes the denial response.
// Returns true when the request may proceed.
func (h *Handler) checkProtection(w http.ResponseWriter, r *http.Request) bool {
	decision := h.gate.Check(location.ClientIP(r), r.UserAgent())
	if decision.Allowed {
		return true
	}

	h.metrics.RecordProtectionDenial(decision.Reason)
	h.logger.Warn("request blocked",
		"reason", decision.Reason,
		"ip", location.ClientIP(r),
		"path", r.URL.Path,
	)

	if decision.Reason == protection.ReasonRateLimit {
		w.Header().Set("Retry-After", formatSeconds(decision.RetryAfter))
		httputil.Error(w, http.StatusTooManyRequests, "too many requests. please try again later")
	} else {
		httputil.Error(w, http.StatusForbidden, "automated requests are not allowed")
	}
	return false
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// SafeRedirect validates a client-supplied redirect target. Only
// same-origin relative paths are honored; anything else falls back to
// the dashboard.
func SafeRedirect(target string) string {
	if target == "" {
		return "/dashboard"
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/dashboard"
	}
	// Browsers normalize backslashes to slashes, so /\evil.com escapes
	// the origin just like //evil.com.
	if strings.ContainsRune(target, '\\') {
		return "/dashboard"
	}
	return target
}
