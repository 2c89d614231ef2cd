package scope

import (
	"time"
)

// ContextPreference controls how strongly a bot must prefer retrieved
// knowledge-base context over its general training knowledge.
type ContextPreference string

const (
	// ContextExclusive means the bot may only answer from retrieved context.
	ContextExclusive ContextPreference = "exclusive"

	// ContextPrefer means retrieved context is preferred but general
	// knowledge may fill gaps.
	ContextPrefer ContextPreference = "prefer"

	// ContextSupplement means retrieved context merely supplements the
	// bot's general knowledge. This is the default.
	ContextSupplement ContextPreference = "supplement"
)

// Rank returns the restrictiveness rank of the preference.
// Higher is more restrictive: exclusive > prefer > supplement.
func (p ContextPreference) Rank() int {
	switch p {
	case ContextExclusive:
		return 2
	case ContextPrefer:
		return 1
	case ContextSupplement:
		return 0
	default:
		return -1
	}
}

// Valid reports whether p is one of the defined preference values.
func (p ContextPreference) Valid() bool {
	return p.Rank() >= 0
}

// DefaultMaxResponseLength is the response length applied when no scope
// specifies one.
const DefaultMaxResponseLength = 500

// Scope is a named, reusable policy unit owned by a tenant and referenced
// (many-to-many) by bots. The resolution engine only reads scopes; creation
// and editing happen in the authoring surface.
type Scope struct {
	// ID uniquely identifies the scope (UUID). Assigned at authoring time;
	// the parser materializes one for template scopes that omit it.
	ID string

	// Name is the human-readable scope name. Must be non-empty for a scope
	// to be activated.
	Name string

	// Description is an optional human-readable description.
	Description string

	// Guardrails is the topic/response-shape restriction half of the scope.
	Guardrails GuardrailConfig

	// Filters is the content-selection half of the scope.
	Filters DatasetFilters

	// Active controls whether the scope participates in resolution.
	Active bool

	// Bots lists the ids of bots this scope is assigned to. A scope is
	// reusable: the same scope may be referenced by many bots.
	Bots []string

	// Created and Updated are authoring timestamps. Updated participates in
	// policy cache keys: any contributing scope change invalidates the
	// cached effective policy.
	Created time.Time
	Updated time.Time

	// SourceFile is the file the scope was loaded from, if any.
	SourceFile string
}

// GuardrailConfig is the topic and response-shape restriction half of a scope.
type GuardrailConfig struct {
	// AllowedTopics is the set of topics the bot may discuss. An empty set
	// means no allow-list: everything not explicitly forbidden is permitted.
	AllowedTopics []string

	// ForbiddenTopics is the set of topics the bot must refuse. Forbidden
	// always wins over allowed when the two overlap.
	ForbiddenTopics []string

	// Boundaries constrains which knowledge the bot may draw on.
	Boundaries KnowledgeBoundaries

	// Response constrains the shape of generated answers.
	Response ResponseGuidelines

	// RefusalMessage is the message substituted when a query is refused.
	// Empty means the caller's system default applies.
	RefusalMessage string
}

// KnowledgeBoundaries constrains the knowledge sources a bot may use.
type KnowledgeBoundaries struct {
	// StrictMode forces the bot to answer only from retrieved context.
	StrictMode bool

	// Preference ranks how strongly retrieved context is preferred.
	Preference ContextPreference

	// AllowedSources names the knowledge sources the bot may reference.
	// Sources named here must still pass dataset filtering individually.
	AllowedSources []string
}

// ResponseGuidelines constrains the shape of generated answers.
type ResponseGuidelines struct {
	// MaxResponseLength is the maximum answer length in words.
	// Zero means unspecified; resolution applies DefaultMaxResponseLength.
	MaxResponseLength int

	// RequireCitations forces the bot to cite sources used from context.
	RequireCitations bool

	// StepByStep forces step-by-step explanations.
	StepByStep bool

	// MathematicalNotation allows/requires proper mathematical notation.
	MathematicalNotation bool
}

// DatasetFilters restricts which knowledge-base items are retrievable.
type DatasetFilters struct {
	// Tags admits only documents sharing at least one tag. Empty: no tag
	// restriction.
	Tags []string

	// Categories admits only documents in one of the named categories.
	// Empty: no category restriction.
	Categories []string

	// IncludePatterns admits only documents whose path or tags match at
	// least one pattern. Empty: no include restriction.
	IncludePatterns []string

	// ExcludePatterns rejects any document whose path or tags match any
	// pattern. Exclusion always wins over inclusion.
	ExcludePatterns []string

	// Metadata requires exact key/value matches on document metadata.
	Metadata map[string]string
}

// Normalize applies construction-time defaults in place and returns the scope.
// Downstream merge logic assumes normalized scopes: preference populated,
// slices non-nil, metadata map non-nil.
func (s *Scope) Normalize() *Scope {
	if s.Bots == nil {
		s.Bots = []string{}
	}
	s.Guardrails.Normalize()
	s.Filters.Normalize()
	return s
}

// Normalize applies defaults to the guardrail config in place.
func (g *GuardrailConfig) Normalize() {
	if g.AllowedTopics == nil {
		g.AllowedTopics = []string{}
	}
	if g.ForbiddenTopics == nil {
		g.ForbiddenTopics = []string{}
	}
	if !g.Boundaries.Preference.Valid() {
		g.Boundaries.Preference = ContextSupplement
	}
	if g.Boundaries.AllowedSources == nil {
		g.Boundaries.AllowedSources = []string{}
	}
}

// Normalize applies defaults to the dataset filters in place.
func (f *DatasetFilters) Normalize() {
	if f.Tags == nil {
		f.Tags = []string{}
	}
	if f.Categories == nil {
		f.Categories = []string{}
	}
	if f.IncludePatterns == nil {
		f.IncludePatterns = []string{}
	}
	if f.ExcludePatterns == nil {
		f.ExcludePatterns = []string{}
	}
	if f.Metadata == nil {
		f.Metadata = map[string]string{}
	}
}

// IsEmpty reports whether the filters impose no restriction at all.
func (f *DatasetFilters) IsEmpty() bool {
	return len(f.Tags) == 0 &&
		len(f.Categories) == 0 &&
		len(f.IncludePatterns) == 0 &&
		len(f.ExcludePatterns) == 0 &&
		len(f.Metadata) == 0
}

// Clone returns a deep copy of the scope. The registry hands out clones so
// copy-on-write updates never mutate a scope a caller still holds.
func (s *Scope) Clone() *Scope {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Bots = append([]string(nil), s.Bots...)
	clone.Guardrails = s.Guardrails.Clone()
	clone.Filters = s.Filters.Clone()
	return &clone
}

// Clone returns a deep copy of the guardrail config.
func (g GuardrailConfig) Clone() GuardrailConfig {
	clone := g
	clone.AllowedTopics = cloneStrings(g.AllowedTopics)
	clone.ForbiddenTopics = cloneStrings(g.ForbiddenTopics)
	clone.Boundaries.AllowedSources = cloneStrings(g.Boundaries.AllowedSources)
	return clone
}

// Clone returns a deep copy of the dataset filters.
func (f DatasetFilters) Clone() DatasetFilters {
	clone := f
	clone.Tags = cloneStrings(f.Tags)
	clone.Categories = cloneStrings(f.Categories)
	clone.IncludePatterns = cloneStrings(f.IncludePatterns)
	clone.ExcludePatterns = cloneStrings(f.ExcludePatterns)
	if f.Metadata != nil {
		clone.Metadata = make(map[string]string, len(f.Metadata))
		for k, v := range f.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
