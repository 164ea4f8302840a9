package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv() {
	envVars := []string{
		"SERVER_ADDR", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"SESSION_SECRET", "SESSION_ISSUER", "SESSION_TTL", "SECURE_COOKIES",
		"GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET", "GITHUB_REDIRECT_URI",
		"IPINFO_TOKEN", "AUTH_RATE_LIMIT",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv()
	os.Setenv("SESSION_SECRET", "test-secret-key")
	defer os.Unsetenv("SESSION_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "localhost")
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, want %q", cfg.DBSSLMode, "disable")
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Errorf("SessionTTL = %v, want %v", cfg.SessionTTL, 30*24*time.Hour)
	}
	if cfg.AuthRateLimit != 10 {
		t.Errorf("AuthRateLimit = %d, want 10", cfg.AuthRateLimit)
	}
	if cfg.HasGitHubOAuth() {
		t.Error("HasGitHubOAuth = true with no credentials set")
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	clearEnv()

	_, err := Load()
	if err == nil {
		t.Error("Load should fail when SESSION_SECRET is not set")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv()
	os.Setenv("SESSION_SECRET", "custom-secret")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("SESSION_TTL", "720h")
	os.Setenv("AUTH_RATE_LIMIT", "20")
	os.Setenv("SECURE_COOKIES", "true")
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.SessionTTL != 720*time.Hour {
		t.Errorf("SessionTTL = %v, want 720h", cfg.SessionTTL)
	}
	if cfg.AuthRateLimit != 20 {
		t.Errorf("AuthRateLimit = %d, want 20", cfg.AuthRateLimit)
	}
	if !cfg.SecureCookies {
		t.Error("SecureCookies = false, want true")
	}
}

func TestHasGitHubOAuth(t *testing.T) {
	cfg := &Config{GitHubClientID: "id"}
	if cfg.HasGitHubOAuth() {
		t.Error("HasGitHubOAuth = true with only a client ID")
	}

	cfg.GitHubClientSecret = "secret"
	if !cfg.HasGitHubOAuth() {
		t.Error("HasGitHubOAuth = false with both credentials")
	}
}
