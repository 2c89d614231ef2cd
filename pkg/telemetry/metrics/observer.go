package metrics

import (
	"time"

	"tessera-hq/meridian/pkg/policy/engine"
	"tessera-hq/meridian/pkg/scope"
)

// Observer adapts a Collector to the enforcement facade's observer
// interface. Metric updates are atomic counter increments, so the inline
// call from the enforcer does not block.
type Observer struct {
	collector *Collector
}

var _ engine.Observer = (*Observer)(nil)

// NewObserver creates an observer that records enforcement outcomes on the
// collector.
func NewObserver(collector *Collector) *Observer {
	return &Observer{collector: collector}
}

// PolicyResolved records the resolution outcome and duration.
func (o *Observer) PolicyResolved(botID string, policy *engine.EffectivePolicy, cached bool, elapsed time.Duration, err error) {
	outcome := "resolved"
	scopeCount := -1
	switch {
	case engine.IsConflict(err):
		outcome = "conflict"
	case err != nil:
		outcome = "error"
	case cached:
		outcome = "cached"
	}
	if policy != nil {
		scopeCount = len(policy.ScopeIDs)
	}
	o.collector.RecordResolution(outcome, elapsed, scopeCount)
}

// TopicDecided records the topic check decision.
func (o *Observer) TopicDecided(policy *engine.EffectivePolicy, text string, decision engine.Decision) {
	o.collector.RecordTopicDecision(string(decision))
}

// ContentDecided records the content admission decision.
func (o *Observer) ContentDecided(policy *engine.EffectivePolicy, doc *scope.Document, admitted bool) {
	o.collector.RecordContentDecision(admitted)
}
