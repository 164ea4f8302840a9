// Package metrics provides Prometheus metric collection and exposure.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metric-recording surface used by the auth handlers
// and middleware.
type Recorder interface {
	RecordSignIn(method, result string)
	RecordSignUp(result string)
	RecordOAuthLink(provider string)
	RecordOAuthCreate(provider string)
	RecordProtectionDenial(reason string)
	RecordAccessDecision(zone, outcome string)
}

// Collector records auth flow metrics to a Prometheus registry.
type Collector struct {
	signIns           *prometheus.CounterVec
	signUps           *prometheus.CounterVec
	oauthLinks        *prometheus.CounterVec
	oauthCreates      *prometheus.CounterVec
	protectionDenials *prometheus.CounterVec
	accessDecisions   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_sign_ins_total",
			Help: "Sign-in attempts by method and result.",
		}, []string{"method", "result"}),
		signUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_sign_ups_total",
			Help: "Sign-up attempts by result.",
		}, []string{"result"}),
		oauthLinks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_oauth_links_total",
			Help: "OAuth identities linked to existing users by provider.",
		}, []string{"provider"}),
		oauthCreates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_oauth_creates_total",
			Help: "Users created from OAuth sign-in by provider.",
		}, []string{"provider"}),
		protectionDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_protection_denials_total",
			Help: "Requests denied by the protection gate by reason.",
		}, []string{"reason"}),
		accessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_access_decisions_total",
			Help: "Access-control middleware decisions by zone and outcome.",
		}, []string{"zone", "outcome"}),
	}

	reg.MustRegister(
		c.signIns,
		c.signUps,
		c.oauthLinks,
		c.oauthCreates,
		c.protectionDenials,
		c.accessDecisions,
	)

	return c
}

// RecordSignIn records a sign-in attempt.
func (c *Collector) RecordSignIn(method, result string) {
	c.signIns.WithLabelValues(method, result).Inc()
}

// RecordSignUp records a sign-up attempt.
func (c *Collector) RecordSignUp(result string) {
	c.signUps.WithLabelValues(result).Inc()
}

// RecordOAuthLink records an identity linked to an existing user.
func (c *Collector) RecordOAuthLink(provider string) {
	c.oauthLinks.WithLabelValues(provider).Inc()
}

// RecordOAuthCreate records a user created from an OAuth profile.
func (c *Collector) RecordOAuthCreate(provider string) {
	c.oauthCreates.WithLabelValues(provider).Inc()
}

// RecordProtectionDenial records a protection gate denial.
func (c *Collector) RecordProtectionDenial(reason string) {
	c.protectionDenials.WithLabelValues(reason).Inc()
}

// RecordAccessDecision records an access-control middleware decision.
func (c *Collector) RecordAccessDecision(zone, outcome string) {
	c.accessDecisions.WithLabelValues(zone, outcome).Inc()
}

// Nop discards all metrics. Useful in tests.
type Nop struct{}

func (Nop) RecordSignIn(method, result string)        {}
func (Nop) RecordSignUp(result string)                {}
func (Nop) RecordOAuthLink(provider string)           {}
func (Nop) RecordOAuthCreate(provider string)         {}
func (Nop) RecordProtectionDenial(reason string)      {}
func (Nop) RecordAccessDecision(zone, outcome string) {}

// Handler returns the Prometheus scrape handler for the registry.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
