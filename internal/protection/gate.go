// Package protection implements the rate/abuse gate invoked before
// sensitive operations (sign-up, sign-in). A denial short-circuits the
// request before any credential-store access.
package protection

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Denial reasons.
const (
	ReasonRateLimit = "rate_limit"
	ReasonBot       = "bot"
)

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed    bool
	Reason     string        // set when denied
	RetryAfter time.Duration // set for rate-limit denials
}

// Allow is the decision that lets a request proceed.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Gate decides whether a sensitive operation may proceed for a caller.
type Gate interface {
	Check(ip, userAgent string) Decision
}

// Config holds gate configuration.
type Config struct {
	// RequestsPerMinute is the per-IP budget for protected operations.
	RequestsPerMinute int
	// DenyBots rejects any caller whose user agent matches a known
	// crawler signature. Authentication endpoints have no legitimate
	// automated traffic.
	DenyBots bool
	// CleanupInterval bounds the lifetime of idle per-IP limiters.
	CleanupInterval time.Duration
}

// DefaultConfig returns the gate defaults used on authentication routes.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 10,
		DenyBots:          true,
		CleanupInterval:   5 * time.Minute,
	}
}

// ipLimiter pairs a token bucket with its last access time for cleanup.
type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LimiterGate is a per-IP token-bucket gate with optional bot denial.
type LimiterGate struct {
	config   Config
	perIPRat rate.Limit

	mu       sync.Mutex
	limiters map[string]*ipLimiter

	stopCh chan struct{}
}

// NewLimiterGate creates a new gate and starts its idle-entry cleanup loop.
func NewLimiterGate(config Config) *LimiterGate {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	g := &LimiterGate{
		config:   config,
		perIPRat: rate.Limit(float64(config.RequestsPerMinute) / 60.0),
		limiters: make(map[string]*ipLimiter),
		stopCh:   make(chan struct{}),
	}
	go g.cleanupLoop()
	return g
}

// Stop terminates the cleanup goroutine.
func (g *LimiterGate) Stop() {
	close(g.stopCh)
}

// Check applies bot detection and the per-IP budget, in that order.
func (g *LimiterGate) Check(ip, userAgent string) Decision {
	if g.config.DenyBots && IsCrawler(userAgent) {
		return Decision{Allowed: false, Reason: ReasonBot}
	}

	if !g.limiterFor(ip).Allow() {
		retry := time.Duration(math.Ceil(1.0/float64(g.perIPRat))) * time.Second
		if retry < time.Second {
			retry = time.Second
		}
		return Decision{Allowed: false, Reason: ReasonRateLimit, RetryAfter: retry}
	}

	return Allow()
}

func (g *LimiterGate) limiterFor(ip string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	if l, ok := g.limiters[ip]; ok {
		l.lastAccess = time.Now()
		return l.limiter
	}

	limiter := rate.NewLimiter(g.perIPRat, g.config.RequestsPerMinute)
	g.limiters[ip] = &ipLimiter{limiter: limiter, lastAccess: time.Now()}
	return limiter
}

func (g *LimiterGate) cleanupLoop() {
	ticker := time.NewTicker(g.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.cleanup()
		case <-g.stopCh:
			return
		}
	}
}

func (g *LimiterGate) cleanup() {
	ttl := g.config.CleanupInterval * 2
	now := time.Now()

	g.mu.Lock()
	for ip, l := range g.limiters {
		if now.Sub(l.lastAccess) > ttl {
			delete(g.limiters, ip)
		}
	}
	g.mu.Unlock()
}

// NoopGate allows everything. Used when protection is disabled.
type NoopGate struct{}

// Check always allows.
func (NoopGate) Check(ip, userAgent string) Decision {
	return Allow()
}
