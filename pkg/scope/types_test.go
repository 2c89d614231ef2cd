package scope

import (
	"reflect"
	"testing"
)

func TestContextPreferenceRank(t *testing.T) {
	tests := []struct {
		pref ContextPreference
		want int
	}{
		{ContextExclusive, 2},
		{ContextPrefer, 1},
		{ContextSupplement, 0},
		{ContextPreference("bogus"), -1},
		{ContextPreference(""), -1},
	}

	for _, tt := range tests {
		if got := tt.pref.Rank(); got != tt.want {
			t.Errorf("Rank(%q) = %d, want %d", tt.pref, got, tt.want)
		}
	}
}

func TestContextPreferenceValid(t *testing.T) {
	for _, p := range []ContextPreference{ContextExclusive, ContextPrefer, ContextSupplement} {
		if !p.Valid() {
			t.Errorf("Valid(%q) = false, want true", p)
		}
	}
	if ContextPreference("both").Valid() {
		t.Error("Valid(\"both\") = true, want false")
	}
}

func TestScopeNormalize(t *testing.T) {
	s := (&Scope{ID: "s1", Name: "test"}).Normalize()

	if s.Bots == nil || s.Guardrails.AllowedTopics == nil || s.Guardrails.ForbiddenTopics == nil {
		t.Error("Normalize() left nil slices")
	}
	if s.Guardrails.Boundaries.Preference != ContextSupplement {
		t.Errorf("Preference = %q, want %q", s.Guardrails.Boundaries.Preference, ContextSupplement)
	}
	if s.Filters.Metadata == nil {
		t.Error("Normalize() left nil metadata map")
	}
}

func TestScopeNormalizePreservesExplicitPreference(t *testing.T) {
	s := &Scope{ID: "s1", Name: "test"}
	s.Guardrails.Boundaries.Preference = ContextExclusive
	s.Normalize()

	if s.Guardrails.Boundaries.Preference != ContextExclusive {
		t.Errorf("Preference = %q, want %q", s.Guardrails.Boundaries.Preference, ContextExclusive)
	}
}

func TestDatasetFiltersIsEmpty(t *testing.T) {
	empty := DatasetFilters{}
	if !empty.IsEmpty() {
		t.Error("IsEmpty() = false for zero filters")
	}

	withTag := DatasetFilters{Tags: []string{"public"}}
	if withTag.IsEmpty() {
		t.Error("IsEmpty() = true for filters with a tag")
	}

	withMeta := DatasetFilters{Metadata: map[string]string{"k": "v"}}
	if withMeta.IsEmpty() {
		t.Error("IsEmpty() = true for filters with metadata")
	}
}

func TestScopeClone(t *testing.T) {
	original := (&Scope{
		ID:   "s1",
		Name: "original",
		Bots: []string{"bot-1"},
		Guardrails: GuardrailConfig{
			AllowedTopics: []string{"orders"},
			Boundaries: KnowledgeBoundaries{
				AllowedSources: []string{"kb-main"},
			},
		},
		Filters: DatasetFilters{
			Tags:     []string{"public"},
			Metadata: map[string]string{"region": "emea"},
		},
	}).Normalize()

	clone := original.Clone()
	if !reflect.DeepEqual(original, clone) {
		t.Fatalf("clone differs from original:\n%+v\n%+v", original, clone)
	}

	// Mutating the clone must not reach the original.
	clone.Bots[0] = "bot-2"
	clone.Guardrails.AllowedTopics[0] = "returns"
	clone.Guardrails.Boundaries.AllowedSources[0] = "kb-other"
	clone.Filters.Tags[0] = "private"
	clone.Filters.Metadata["region"] = "apac"

	if original.Bots[0] != "bot-1" {
		t.Error("clone shares Bots backing array")
	}
	if original.Guardrails.AllowedTopics[0] != "orders" {
		t.Error("clone shares AllowedTopics backing array")
	}
	if original.Guardrails.Boundaries.AllowedSources[0] != "kb-main" {
		t.Error("clone shares AllowedSources backing array")
	}
	if original.Filters.Tags[0] != "public" {
		t.Error("clone shares Tags backing array")
	}
	if original.Filters.Metadata["region"] != "emea" {
		t.Error("clone shares Metadata map")
	}
}

func TestScopeCloneNil(t *testing.T) {
	var s *Scope
	if s.Clone() != nil {
		t.Error("Clone() of nil scope should be nil")
	}
}
