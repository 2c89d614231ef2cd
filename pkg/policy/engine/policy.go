package engine

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"

	"tessera-hq/meridian/pkg/scope"
)

// EffectivePolicy is the resolved, immutable policy for one bot at one point
// in time. It is constructed fresh per resolution call, never mutated after
// construction, and safe to cache keyed by the identities and update
// timestamps of the contributing scopes (see Fingerprint).
type EffectivePolicy struct {
	// AllowedTopics is the merged allow-list after forbid-wins filtering.
	// Empty means no allow-list is configured.
	AllowedTopics []string

	// ForbiddenTopics is the union of every contributing scope's forbidden
	// topics. Resolution never narrows this set.
	ForbiddenTopics []string

	// Boundaries is the most restrictive knowledge boundary configuration.
	Boundaries scope.KnowledgeBoundaries

	// Response is the most restrictive response guideline configuration.
	Response scope.ResponseGuidelines

	// RefusalMessage is the chosen refusal message: the first non-empty
	// message when scopes are ordered by ascending id. Empty means the
	// caller's system default applies.
	RefusalMessage string

	// Filters is the merged dataset filter rule set.
	Filters scope.DatasetFilters

	// ScopeIDs are the ids of the contributing scopes, sorted ascending.
	ScopeIDs []string

	// Fingerprint identifies this exact policy: a hash over the sorted
	// contributing scope ids and their update timestamps. Two resolutions
	// over an unchanged scope set produce the same fingerprint.
	Fingerprint string
}

// DefaultPolicy returns the fully permissive policy produced when a bot has
// no active scopes: no topic restrictions, no strict mode, supplement
// context preference, default response guidelines, permissive filters.
func DefaultPolicy() *EffectivePolicy {
	return &EffectivePolicy{
		AllowedTopics:   []string{},
		ForbiddenTopics: []string{},
		Boundaries: scope.KnowledgeBoundaries{
			StrictMode:     false,
			Preference:     scope.ContextSupplement,
			AllowedSources: []string{},
		},
		Response: scope.ResponseGuidelines{
			MaxResponseLength: scope.DefaultMaxResponseLength,
		},
		Filters: scope.DatasetFilters{
			Tags:            []string{},
			Categories:      []string{},
			IncludePatterns: []string{},
			ExcludePatterns: []string{},
			Metadata:        map[string]string{},
		},
		ScopeIDs:    []string{},
		Fingerprint: Fingerprint(nil),
	}
}

// Fingerprint computes the cache key component for a scope set: a sha256
// hash over the sorted (id, updated) pairs of the active scopes. Inactive
// scopes are skipped, matching Resolve, so fingerprinting a caller's input
// set and fingerprinting the resolved policy's contributing set agree. Any
// contributing scope change produces a different fingerprint.
func Fingerprint(scopes []*scope.Scope) string {
	sorted := make([]*scope.Scope, 0, len(scopes))
	for _, s := range scopes {
		if s != nil && s.Active {
			sorted = append(sorted, s)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	h := sha256.New()
	for _, s := range sorted {
		h.Write([]byte(s.ID))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(s.Updated.UnixNano(), 10)))
		h.Write([]byte{0})
	}

	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// HasAllowList reports whether the policy carries a topic allow-list.
func (p *EffectivePolicy) HasAllowList() bool {
	return len(p.AllowedTopics) > 0
}
