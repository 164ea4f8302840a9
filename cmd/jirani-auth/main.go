package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jirani/jirani-auth/internal/config"
	httpserver "github.com/jirani/jirani-auth/internal/http"
	"github.com/jirani/jirani-auth/internal/httputil"
	"github.com/jirani/jirani-auth/internal/location"
	"github.com/jirani/jirani-auth/internal/metrics"
	"github.com/jirani/jirani-auth/internal/protection"
	"github.com/jirani/jirani-auth/pkg/auth"
	"github.com/jirani/jirani-auth/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	dbConfig := repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
	db, err := repository.NewDB(dbConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Apply pending migrations
	if err := repository.Migrate(dbConfig.URL()); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	identitiesRepo := repository.NewIdentitiesRepository(db)

	// Initialize services
	resolver := location.NewIPInfoResolver(location.Config{
		Token: cfg.IPinfoToken,
	}, logger)
	if cfg.IPinfoToken == "" {
		logger.Warn("IPINFO_TOKEN not set, location defaults in effect")
	}

	authService := auth.NewService(usersRepo, identitiesRepo, resolver)
	sessionService := auth.NewSessionService(auth.SessionConfig{
		Secret: []byte(cfg.SessionSecret),
		Issuer: cfg.SessionIssuer,
		TTL:    cfg.SessionTTL,
	})

	// Initialize GitHub provider if configured
	var githubProvider *auth.GitHubProvider
	if cfg.HasGitHubOAuth() {
		githubProvider = auth.NewGitHubProvider(auth.GitHubConfig{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURI:  cfg.GitHubRedirectURI,
		})
		logger.Info("GitHub OAuth enabled")
	}

	// Protection gate for auth endpoints
	gate := protection.NewLimiterGate(protection.Config{
		RequestsPerMinute: cfg.AuthRateLimit,
		DenyBots:          true,
		CleanupInterval:   5 * time.Minute,
	})
	defer gate.Stop()

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	cookieConfig := httputil.DefaultCookieConfig()
	cookieConfig.Secure = cfg.SecureCookies

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:         logger,
		AuthService:    authService,
		SessionService: sessionService,
		GitHubProvider: githubProvider,
		Gate:           gate,
		Metrics:        collector,
		Registry:       registry,
		CookieConfig:   cookieConfig,
		AuthRateLimit:  cfg.AuthRateLimit,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
