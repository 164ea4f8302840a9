// Package http wires the middleware stack and feature handlers into the
// application router.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jirani/jirani-auth/internal/http/features/github"
	"github.com/jirani/jirani-auth/internal/http/features/me"
	"github.com/jirani/jirani-auth/internal/http/features/pages"
	"github.com/jirani/jirani-auth/internal/http/features/password"
	"github.com/jirani/jirani-auth/internal/http/features/session"
	"github.com/jirani/jirani-auth/internal/http/middleware"
	"github.com/jirani/jirani-auth/internal/httputil"
	"github.com/jirani/jirani-auth/internal/metrics"
	"github.com/jirani/jirani-auth/internal/protection"
	"github.com/jirani/jirani-auth/pkg/auth"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	SessionService *auth.SessionService
	GitHubProvider *auth.GitHubProvider // nil when OAuth is not configured
	Gate           protection.Gate
	Metrics        metrics.Recorder
	Registry       prometheus.Gatherer // nil disables /metrics
	CookieConfig   httputil.CookieConfig
	AuthRateLimit  int
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestSizeLimit(middleware.DefaultMaxBodyBytes))
	r.Use(middleware.Session(cfg.SessionService))
	r.Use(middleware.AccessControl(cfg.Metrics))

	// Health check
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Registry != nil {
		r.Get("/metrics", metrics.Handler(cfg.Registry).ServeHTTP)
	}

	authLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Requests: cfg.AuthRateLimit,
		Window:   time.Minute,
		Logger:   cfg.Logger,
	})

	// Credential authentication routes
	passwordHandler := password.NewHandler(
		cfg.Logger,
		cfg.AuthService,
		cfg.SessionService,
		cfg.Gate,
		cfg.Metrics,
		cfg.CookieConfig,
	)
	r.Group(func(r chi.Router) {
		r.Use(authLimit)
		r.Post("/api/auth/register", passwordHandler.Register)
		r.Post("/api/auth/login", passwordHandler.Login)
	})
	r.With(middleware.RequireAuth()).Post("/api/auth/setup-password", passwordHandler.SetupPassword)

	// GitHub OAuth routes (if configured)
	if cfg.GitHubProvider != nil {
		githubHandler := github.NewHandler(
			cfg.Logger,
			cfg.GitHubProvider,
			cfg.AuthService,
			cfg.SessionService,
			cfg.Gate,
			cfg.Metrics,
			cfg.CookieConfig,
		)
		r.Get("/api/auth/github", githubHandler.Start)
		r.Get("/api/auth/github/callback", githubHandler.Callback)
	}

	// Session routes
	sessionHandler := session.NewHandler(cfg.CookieConfig)
	r.Get("/api/auth/session", sessionHandler.Session)
	r.Post("/api/auth/logout", sessionHandler.Logout)

	// Authenticated user routes
	meHandler := me.NewHandler(cfg.Logger, cfg.AuthService)
	r.With(middleware.RequireAuth()).Get("/api/user/auth-methods", meHandler.AuthMethods)

	// Page routes
	pagesHandler, err := pages.NewHandler()
	if err != nil {
		cfg.Logger.Error("failed to load page templates", "error", err)
	} else {
		r.Get("/", pagesHandler.Home)
		r.Get("/login", pagesHandler.Login)
		r.Get("/register", pagesHandler.Register)
		r.Get("/dashboard", pagesHandler.Dashboard)
		r.Get("/admin", pagesHandler.Admin)
		r.Get("/maintenance", pagesHandler.Maintenance)
	}

	return r
}
