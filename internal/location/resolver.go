// Package location resolves client IPs to a best-effort country, falling
// back to fixed defaults when lookup is unconfigured, slow, or failing.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jirani/jirani-auth/pkg/auth"
	"github.com/jirani/jirani-auth/pkg/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	defaultBaseURL = "https://ipinfo.io"
	defaultTimeout = 5 * time.Second

	// fallbackIP keeps lookups meaningful when no client IP is discoverable.
	fallbackIP = "8.8.8.8"
)

// Config holds resolver configuration. An empty Token disables lookups
// entirely; Resolve then returns the defaults immediately.
type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// IPInfoResolver resolves countries through the IPinfo API.
type IPInfoResolver struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewIPInfoResolver creates a new IPinfo-backed resolver.
func NewIPInfoResolver(cfg Config, logger *slog.Logger) *IPInfoResolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &IPInfoResolver{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// ipinfoResponse is the subset of the IPinfo response we consume.
// The country field is a 2-letter ISO code like "GB" or "US".
type ipinfoResponse struct {
	Country string `json:"country"`
}

// Resolve looks up the country for an IP. It never fails: any error,
// timeout, or non-200 response degrades to the fixed defaults.
func (r *IPInfoResolver) Resolve(ctx context.Context, ip string) auth.Location {
	defaults := auth.Location{
		CountryCode: domain.DefaultCountryCode,
		Country:     domain.DefaultCountry,
	}

	if r.config.Token == "" {
		return defaults
	}
	if ip == "" {
		ip = fallbackIP
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s?token=%s", r.config.BaseURL, ip, r.config.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return defaults
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("location lookup failed", "ip", ip, "error", err)
		return defaults
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("location lookup returned error", "ip", ip, "status", resp.StatusCode)
		return defaults
	}

	var data ipinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		r.logger.Warn("location response decode failed", "ip", ip, "error", err)
		return defaults
	}
	if data.Country == "" {
		return defaults
	}

	code := strings.ToUpper(data.Country)
	return auth.Location{
		CountryCode: code,
		Country:     CountryName(code),
	}
}

// CountryName converts an ISO alpha-2 code to its English display name,
// falling back to the default country when the code is unknown.
func CountryName(code string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return domain.DefaultCountry
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return domain.DefaultCountry
}

// ClientIP extracts the real client IP from proxy headers, taking the first
// hop of X-Forwarded-For, then X-Real-IP, then the connection address.
func ClientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		forwarded = r.Header.Get("X-Real-IP")
	}
	if forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return fallbackIP
}
