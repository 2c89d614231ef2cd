package validator

import (
	"strings"
	"testing"

	"tessera-hq/meridian/pkg/scope"
)

func TestValidateScopeNil(t *testing.T) {
	report := New().ValidateScope(nil)
	if report.IsValid {
		t.Error("IsValid = true for nil scope")
	}
	if len(report.Errors) != 1 {
		t.Errorf("Errors = %v", report.Errors)
	}
}

func TestValidateScopeEmptyName(t *testing.T) {
	report := New().ValidateScope(&scope.Scope{ID: "s1", Name: "   "})
	if report.IsValid {
		t.Error("IsValid = true for blank name")
	}
	if !containsSubstring(report.Errors, "name cannot be empty") {
		t.Errorf("Errors = %v", report.Errors)
	}
}

func TestValidateScopeClean(t *testing.T) {
	s := (&scope.Scope{
		ID:   "s1",
		Name: "support",
		Guardrails: scope.GuardrailConfig{
			AllowedTopics:   []string{"orders"},
			ForbiddenTopics: []string{"pricing"},
			Response:        scope.ResponseGuidelines{MaxResponseLength: 300},
		},
	}).Normalize()

	report := New().ValidateScope(s)
	if !report.IsValid {
		t.Errorf("IsValid = false, errors = %v", report.Errors)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", report.Warnings)
	}
}

func TestTopicOverlapWarning(t *testing.T) {
	tests := []struct {
		name      string
		allowed   string
		forbidden string
		overlap   bool
	}{
		{"identical", "pricing", "pricing", true},
		{"allowed contains forbidden", "pricing strategy", "pricing", true},
		{"forbidden contains allowed", "pricing", "internal pricing", true},
		{"case insensitive", "PRICING", "pricing", true},
		{"disjoint", "orders", "pricing", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &scope.GuardrailConfig{
				AllowedTopics:   []string{tt.allowed},
				ForbiddenTopics: []string{tt.forbidden},
			}
			report := New().Validate(cfg, nil)

			if !report.IsValid {
				t.Errorf("overlap must stay a warning, got errors: %v", report.Errors)
			}
			got := containsSubstring(report.Warnings, "overlaps forbidden topic")
			if got != tt.overlap {
				t.Errorf("overlap warning = %v, want %v (warnings: %v)", got, tt.overlap, report.Warnings)
			}
		})
	}
}

func TestResponseLengthWarnings(t *testing.T) {
	tests := []struct {
		length int
		warns  bool
	}{
		{0, false}, // unspecified
		{MinReasonableResponseLength - 1, true},
		{MinReasonableResponseLength, false},
		{MaxReasonableResponseLength, false},
		{MaxReasonableResponseLength + 1, true},
	}

	for _, tt := range tests {
		cfg := &scope.GuardrailConfig{
			Response: scope.ResponseGuidelines{MaxResponseLength: tt.length},
		}
		report := New().Validate(cfg, nil)
		if got := len(report.Warnings) > 0; got != tt.warns {
			t.Errorf("length %d: warning = %v, want %v", tt.length, got, tt.warns)
		}
	}
}

func TestStrictModeWithoutSourcesWarning(t *testing.T) {
	cfg := &scope.GuardrailConfig{
		Boundaries: scope.KnowledgeBoundaries{StrictMode: true},
	}
	report := New().Validate(cfg, nil)

	if !report.IsValid {
		t.Errorf("errors = %v, want warning only", report.Errors)
	}
	if !containsSubstring(report.Warnings, "allowed_sources is empty") {
		t.Errorf("Warnings = %v", report.Warnings)
	}

	cfg.Boundaries.AllowedSources = []string{"kb-main"}
	if report := New().Validate(cfg, nil); len(report.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none with a declared source", report.Warnings)
	}
}

func TestInvalidPreferenceIsError(t *testing.T) {
	cfg := &scope.GuardrailConfig{
		Boundaries: scope.KnowledgeBoundaries{Preference: "both"},
	}
	report := New().Validate(cfg, nil)
	if report.IsValid {
		t.Error("IsValid = true for unknown preference")
	}
	if !containsSubstring(report.Errors, "context_preference") {
		t.Errorf("Errors = %v", report.Errors)
	}
}

func TestPatternCollisionWarning(t *testing.T) {
	tests := []struct {
		name    string
		include string
		exclude string
		collide bool
	}{
		{"identical", "internal/*", "internal/*", true},
		{"wildcard-stripped equal", "internal*", "*internal", true},
		{"case insensitive", "Internal/*", "internal/*", true},
		{"distinct", "public/*", "internal/*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters := &scope.DatasetFilters{
				IncludePatterns: []string{tt.include},
				ExcludePatterns: []string{tt.exclude},
			}
			report := New().Validate(nil, filters)

			got := containsSubstring(report.Warnings, "exclude wins")
			if got != tt.collide {
				t.Errorf("collision warning = %v, want %v (warnings: %v)", got, tt.collide, report.Warnings)
			}
		})
	}
}

func TestEmptyPatternWarning(t *testing.T) {
	filters := &scope.DatasetFilters{
		IncludePatterns: []string{""},
		ExcludePatterns: []string{"  "},
	}
	report := New().Validate(nil, filters)

	if len(report.Warnings) != 2 {
		t.Errorf("Warnings = %v, want two empty-pattern findings", report.Warnings)
	}
	if !report.IsValid {
		t.Error("empty patterns must warn, not error")
	}
}

func containsSubstring(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
