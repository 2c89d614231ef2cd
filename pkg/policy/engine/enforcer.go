package engine

import (
	"context"
	"log/slog"
	"time"

	"tessera-hq/meridian/pkg/scope"
)

// PolicyCache stores resolved policies keyed by bot id and fingerprint.
// Resolution is pure, so cached entries stay valid until any contributing
// scope changes, which changes the fingerprint. Implemented by
// pkg/policy/cache.
type PolicyCache interface {
	// Get returns the cached policy for the bot if its fingerprint still
	// matches the current scope set.
	Get(botID, fingerprint string) (*EffectivePolicy, bool)

	// Put stores a freshly resolved policy for the bot.
	Put(botID string, policy *EffectivePolicy)
}

// Observer receives enforcement outcomes. Implementations (audit recording,
// metrics) must not block: the enforcer calls them inline on the request
// path.
type Observer interface {
	// PolicyResolved is called after every resolution attempt. policy is
	// nil when err is non-nil.
	PolicyResolved(botID string, policy *EffectivePolicy, cached bool, elapsed time.Duration, err error)

	// TopicDecided is called after every topic check.
	TopicDecided(policy *EffectivePolicy, text string, decision Decision)

	// ContentDecided is called after every content admission decision.
	ContentDecided(policy *EffectivePolicy, doc *scope.Document, admitted bool)
}

// EnforcerConfig configures the enforcement facade.
type EnforcerConfig struct {
	// Cache is the optional policy cache. Nil disables caching.
	Cache PolicyCache

	// Observers receive enforcement outcomes (audit trail, metrics).
	Observers []Observer

	// Logger is the structured logger. Nil falls back to slog.Default().
	Logger *slog.Logger
}

// Enforcer is the narrow facade exposed to the retrieval and chat pipelines.
// It wraps the pure resolution core with caching, logging, and observer
// notification. All methods are safe for concurrent use.
type Enforcer struct {
	cache     PolicyCache
	observers []Observer
	logger    *slog.Logger
}

// NewEnforcer creates a new enforcement facade.
func NewEnforcer(cfg *EnforcerConfig) *Enforcer {
	if cfg == nil {
		cfg = &EnforcerConfig{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Enforcer{
		cache:     cfg.Cache,
		observers: cfg.Observers,
		logger:    logger.With("component", "policy.enforcer"),
	}
}

// Resolve resolves the bot's active scopes into an EffectivePolicy, serving
// from cache when the scope set is unchanged. On a resolution conflict the
// error is returned as-is; the enforcer never falls back to a more
// permissive policy (fail closed).
func (e *Enforcer) Resolve(ctx context.Context, botID string, scopes []*scope.Scope) (*EffectivePolicy, error) {
	start := time.Now()

	fingerprint := Fingerprint(scopes)
	if e.cache != nil {
		if policy, ok := e.cache.Get(botID, fingerprint); ok {
			e.logger.DebugContext(ctx, "policy served from cache",
				"bot_id", botID,
				"fingerprint", fingerprint,
			)
			e.notifyResolved(botID, policy, true, time.Since(start), nil)
			return policy, nil
		}
	}

	policy, err := Resolve(scopes)
	if err != nil {
		e.logger.ErrorContext(ctx, "policy resolution failed",
			"bot_id", botID,
			"scope_count", len(scopes),
			"error", err,
		)
		e.notifyResolved(botID, nil, false, time.Since(start), err)
		return nil, err
	}

	if e.cache != nil {
		e.cache.Put(botID, policy)
	}

	e.logger.DebugContext(ctx, "policy resolved",
		"bot_id", botID,
		"fingerprint", policy.Fingerprint,
		"scope_count", len(policy.ScopeIDs),
		"allowed_topics", len(policy.AllowedTopics),
		"forbidden_topics", len(policy.ForbiddenTopics),
		"strict_mode", policy.Boundaries.StrictMode,
	)
	e.notifyResolved(botID, policy, false, time.Since(start), nil)

	return policy, nil
}

// IsContentAdmitted reports whether the document passes the policy's merged
// dataset filters. Called by the retrieval pipeline for each candidate
// document before including it in context.
func (e *Enforcer) IsContentAdmitted(policy *EffectivePolicy, doc *scope.Document) bool {
	admitted := Admit(&policy.Filters, doc)

	for _, obs := range e.observers {
		obs.ContentDecided(policy, doc, admitted)
	}

	return admitted
}

// CheckTopic classifies candidate text against the policy's topic rules.
// Called by the chat pipeline against the user's query; a DecisionForbidden
// result means the pipeline must substitute the policy's refusal message
// instead of invoking the model.
func (e *Enforcer) CheckTopic(policy *EffectivePolicy, text string) Decision {
	decision := CheckTopic(policy, text)

	for _, obs := range e.observers {
		obs.TopicDecided(policy, text, decision)
	}

	return decision
}

// notifyResolved fans a resolution outcome out to all observers.
func (e *Enforcer) notifyResolved(botID string, policy *EffectivePolicy, cached bool, elapsed time.Duration, err error) {
	for _, obs := range e.observers {
		obs.PolicyResolved(botID, policy, cached, elapsed, err)
	}
}
