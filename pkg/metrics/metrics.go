package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rdhub", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rdhub", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// DOIChecks counts validation requests by outcome: invalid, free,
	// collision.
	DOIChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rdhub", Name: "doi_checks_total", Help: "Number of DOI validation requests by outcome."},
		[]string{"outcome"},
	)
	// DOISuggestions counts suggestion results: suggested, exhausted (no
	// automatic suggestion available).
	DOISuggestions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rdhub", Name: "doi_suggestions_total", Help: "Number of DOI suggestion results by kind."},
		[]string{"result"},
	)
	ResourcesPublished = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "rdhub", Name: "resources_published_total", Help: "Number of resources moved to the published state."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(DOIChecks)
	reg.MustRegister(DOISuggestions)
	reg.MustRegister(ResourcesPublished)
}
