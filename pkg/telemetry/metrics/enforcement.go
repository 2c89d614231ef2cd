package metrics

import (
	"tessera-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EnforcementMetrics tracks metrics related to enforcement decisions.
//
// Metrics:
//   - tessera_meridian_topic_decisions_total: Topic checks by decision
//   - tessera_meridian_content_decisions_total: Content admission checks by outcome
type EnforcementMetrics struct {
	// Topic check decisions ("allowed", "forbidden", "unrestricted")
	topicDecisionsTotal *prometheus.CounterVec

	// Content admission decisions ("admitted", "rejected")
	contentDecisionsTotal *prometheus.CounterVec
}

// NewEnforcementMetrics creates and registers enforcement metrics with the
// provided registry.
func NewEnforcementMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EnforcementMetrics {
	em := &EnforcementMetrics{
		topicDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "topic_decisions_total",
				Help:      "Total number of topic checks by decision",
			},
			[]string{"decision"},
		),

		contentDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "content_decisions_total",
				Help:      "Total number of content admission checks by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		em.topicDecisionsTotal,
		em.contentDecisionsTotal,
	)

	return em
}

// RecordTopicDecision records a topic check decision.
func (em *EnforcementMetrics) RecordTopicDecision(decision string) {
	em.topicDecisionsTotal.WithLabelValues(decision).Inc()
}

// RecordContentDecision records a content admission decision.
func (em *EnforcementMetrics) RecordContentDecision(admitted bool) {
	outcome := "rejected"
	if admitted {
		outcome = "admitted"
	}
	em.contentDecisionsTotal.WithLabelValues(outcome).Inc()
}
