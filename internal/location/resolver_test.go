package location

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jirani/jirani-auth/pkg/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolve_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ip": "203.0.113.7", "country": "gb", "city": "London"}`))
	}))
	defer server.Close()

	resolver := NewIPInfoResolver(Config{Token: "test-token", BaseURL: server.URL}, testLogger())

	loc := resolver.Resolve(context.Background(), "203.0.113.7")
	if loc.CountryCode != "GB" {
		t.Errorf("CountryCode = %q, want GB uppercased", loc.CountryCode)
	}
	if loc.Country != "United Kingdom" {
		t.Errorf("Country = %q, want United Kingdom", loc.Country)
	}
}

func TestResolve_NoTokenReturnsDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("lookup performed without a token")
	}))
	defer server.Close()

	resolver := NewIPInfoResolver(Config{BaseURL: server.URL}, testLogger())

	loc := resolver.Resolve(context.Background(), "203.0.113.7")
	if loc.CountryCode != domain.DefaultCountryCode || loc.Country != domain.DefaultCountry {
		t.Errorf("got %+v, want defaults", loc)
	}
}

func TestResolve_ErrorsDegradeToDefaults(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"empty country", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ip": "203.0.113.7"}`))
		}},
		{"slow response", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"country": "GB"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			resolver := NewIPInfoResolver(Config{
				Token:   "test-token",
				BaseURL: server.URL,
				Timeout: 50 * time.Millisecond,
			}, testLogger())

			loc := resolver.Resolve(context.Background(), "203.0.113.7")
			if loc.CountryCode != domain.DefaultCountryCode {
				t.Errorf("CountryCode = %q, want default %q", loc.CountryCode, domain.DefaultCountryCode)
			}
			if loc.Country != domain.DefaultCountry {
				t.Errorf("Country = %q, want default %q", loc.Country, domain.DefaultCountry)
			}
		})
	}
}

func TestCountryName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"KE", "Kenya"},
		{"US", "United States"},
		{"GB", "United Kingdom"},
		{"invalid", domain.DefaultCountry},
		{"", domain.DefaultCountry},
	}

	for _, tt := range tests {
		if got := CountryName(tt.code); got != tt.want {
			t.Errorf("CountryName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.7", "", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded chain takes first hop", "203.0.113.7, 10.0.0.2, 10.0.0.3", "", "10.0.0.1:1234", "203.0.113.7"},
		{"real ip fallback", "", "198.51.100.9", "10.0.0.1:1234", "198.51.100.9"},
		{"remote addr fallback", "", "", "192.0.2.4:5678", "192.0.2.4"},
		{"nothing usable", "", "", "", fallbackIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
