package engine

import (
	"sort"
	"strings"

	"tessera-hq/meridian/pkg/scope"
)

// Resolve merges the guardrails and dataset filters of the given scopes into
// one immutable EffectivePolicy. Inactive scopes are skipped. The input
// order is irrelevant: scope assignment is an unordered set, so resolution
// is commutative and two calls over the same scope set produce bit-for-bit
// identical policies.
//
// An empty (or all-inactive) input yields the fully permissive default
// policy. The only error is *ConflictError, raised when two scopes assign
// different values to the same metadata filter key; callers must treat that
// as fatal for the request and refuse to answer rather than guess.
func Resolve(scopes []*scope.Scope) (*EffectivePolicy, error) {
	active := make([]*scope.Scope, 0, len(scopes))
	for _, s := range scopes {
		if s != nil && s.Active {
			active = append(active, s)
		}
	}

	if len(active) == 0 {
		return DefaultPolicy(), nil
	}

	// Deterministic processing order. The merge rules are commutative, but
	// the refusal message tie-break and the output set ordering depend on
	// ascending id.
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	policy := &EffectivePolicy{
		Boundaries: scope.KnowledgeBoundaries{
			Preference: scope.ContextSupplement,
		},
	}

	allowed := newStringSet()
	forbidden := newStringSet()
	sources := newStringSet()
	tags := newStringSet()
	categories := newStringSet()
	includes := newStringSet()
	excludes := newStringSet()

	metadata := map[string]string{}
	metadataOwner := map[string]string{} // key -> id of the scope that set it

	maxLength := 0
	scopeIDs := make([]string, 0, len(active))

	for _, s := range active {
		scopeIDs = append(scopeIDs, s.ID)
		g := s.Guardrails

		allowed.addAll(g.AllowedTopics)
		forbidden.addAll(g.ForbiddenTopics)
		sources.addAll(g.Boundaries.AllowedSources)

		// Any scope demanding strictness makes the whole bot strict.
		policy.Boundaries.StrictMode = policy.Boundaries.StrictMode || g.Boundaries.StrictMode

		// Most restrictive preference wins: exclusive > prefer > supplement.
		if g.Boundaries.Preference.Rank() > policy.Boundaries.Preference.Rank() {
			policy.Boundaries.Preference = g.Boundaries.Preference
		}

		// Minimum across scopes that specify a value.
		if g.Response.MaxResponseLength > 0 {
			if maxLength == 0 || g.Response.MaxResponseLength < maxLength {
				maxLength = g.Response.MaxResponseLength
			}
		}
		policy.Response.RequireCitations = policy.Response.RequireCitations || g.Response.RequireCitations
		policy.Response.StepByStep = policy.Response.StepByStep || g.Response.StepByStep
		policy.Response.MathematicalNotation = policy.Response.MathematicalNotation || g.Response.MathematicalNotation

		// First non-empty message in ascending-id order wins.
		if policy.RefusalMessage == "" && g.RefusalMessage != "" {
			policy.RefusalMessage = g.RefusalMessage
		}

		f := s.Filters
		tags.addAll(f.Tags)
		categories.addAll(f.Categories)
		includes.addAll(f.IncludePatterns)
		excludes.addAll(f.ExcludePatterns)

		for key, value := range f.Metadata {
			if prev, ok := metadata[key]; ok && prev != value {
				return nil, &ConflictError{
					Key: key,
					Values: map[string]string{
						metadataOwner[key]: prev,
						s.ID:               value,
					},
				}
			}
			metadata[key] = value
			metadataOwner[key] = s.ID
		}
	}

	if maxLength == 0 {
		maxLength = scope.DefaultMaxResponseLength
	}
	policy.Response.MaxResponseLength = maxLength

	policy.ForbiddenTopics = forbidden.sorted()
	policy.AllowedTopics = dropForbidden(allowed.sorted(), policy.ForbiddenTopics)
	policy.Boundaries.AllowedSources = sources.sorted()

	policy.Filters = scope.DatasetFilters{
		Tags:            tags.sorted(),
		Categories:      categories.sorted(),
		IncludePatterns: includes.sorted(),
		ExcludePatterns: excludes.sorted(),
		Metadata:        metadata,
	}

	policy.ScopeIDs = scopeIDs
	policy.Fingerprint = Fingerprint(active)

	return policy, nil
}

// dropForbidden enforces forbid-wins: it removes from the merged allow-list
// any entry that is a case-insensitive substring match, in either direction,
// of any forbidden entry. Applied after the unions, not per scope, so a
// topic allowed by one scope and forbidden by another ends up forbidden for
// the bot as a whole.
func dropForbidden(allowed, forbidden []string) []string {
	if len(allowed) == 0 || len(forbidden) == 0 {
		return allowed
	}

	kept := make([]string, 0, len(allowed))
	for _, topic := range allowed {
		if !overlapsAny(topic, forbidden) {
			kept = append(kept, topic)
		}
	}
	return kept
}

// overlapsAny reports whether topic overlaps any entry in the list as a
// case-insensitive substring, in either direction.
func overlapsAny(topic string, list []string) bool {
	lt := strings.ToLower(topic)
	for _, other := range list {
		lo := strings.ToLower(other)
		if strings.Contains(lt, lo) || strings.Contains(lo, lt) {
			return true
		}
	}
	return false
}

// stringSet accumulates unique strings and yields them sorted, giving the
// resolver deterministic output independent of input order.
type stringSet map[string]struct{}

func newStringSet() stringSet {
	return make(stringSet)
}

func (s stringSet) addAll(items []string) {
	for _, item := range items {
		if item != "" {
			s[item] = struct{}{}
		}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
