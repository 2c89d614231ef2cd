package validator

import (
	"fmt"
	"strings"

	"tessera-hq/meridian/pkg/scope"
)

// Response length bounds outside which a warning is raised. Below the
// minimum answers are likely truncated mid-sentence; above the maximum
// they get verbose and costly.
const (
	MinReasonableResponseLength = 50
	MaxReasonableResponseLength = 2000
)

// ValidationReport is the outcome of validating a scope configuration.
// It is returned synchronously to the caller proposing a scope change and
// is never persisted.
type ValidationReport struct {
	// IsValid is false only when Errors is non-empty. Warnings do not
	// affect validity.
	IsValid bool

	// Errors block activation of the scope.
	Errors []string

	// Warnings surface likely authoring mistakes but never block a save.
	Warnings []string
}

// addError appends an error and marks the report invalid.
func (r *ValidationReport) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.IsValid = false
}

// addWarning appends a warning.
func (r *ValidationReport) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validator checks scope configurations for internal contradictions.
type Validator struct{}

// New creates a new validator.
func New() *Validator {
	return &Validator{}
}

// ValidateScope validates a complete scope, including the activation
// requirements on the scope record itself.
func (v *Validator) ValidateScope(s *scope.Scope) *ValidationReport {
	report := &ValidationReport{IsValid: true}

	if s == nil {
		report.addError("scope cannot be nil")
		return report
	}

	if strings.TrimSpace(s.Name) == "" {
		report.addError("scope name cannot be empty")
	}

	v.checkGuardrails(&s.Guardrails, report)
	v.checkFilters(&s.Filters, report)

	return report
}

// Validate validates a guardrail config and its paired dataset filters.
// Either argument may be nil, meaning that half imposes no restrictions.
func (v *Validator) Validate(cfg *scope.GuardrailConfig, filters *scope.DatasetFilters) *ValidationReport {
	report := &ValidationReport{IsValid: true}

	if cfg != nil {
		v.checkGuardrails(cfg, report)
	}
	if filters != nil {
		v.checkFilters(filters, report)
	}

	return report
}

// checkGuardrails appends findings for a guardrail config.
func (v *Validator) checkGuardrails(cfg *scope.GuardrailConfig, report *ValidationReport) {
	v.checkTopicOverlap(cfg, report)
	v.checkResponseLength(&cfg.Response, report)
	v.checkBoundaries(&cfg.Boundaries, report)
}

// checkTopicOverlap warns when an allowed topic is a case-insensitive
// substring of a forbidden topic or vice versa. Resolution is forbid-wins,
// so the allowed entry would be silently dropped; the author should know.
func (v *Validator) checkTopicOverlap(cfg *scope.GuardrailConfig, report *ValidationReport) {
	for _, allowed := range cfg.AllowedTopics {
		for _, forbidden := range cfg.ForbiddenTopics {
			if topicsOverlap(allowed, forbidden) {
				report.addWarning(
					"allowed topic %q overlaps forbidden topic %q; forbidden wins during resolution and the allowed entry will be dropped",
					allowed, forbidden)
			}
		}
	}
}

// checkResponseLength warns on response length bounds that likely truncate
// or balloon answers. Zero means unspecified and is not checked.
func (v *Validator) checkResponseLength(rg *scope.ResponseGuidelines, report *ValidationReport) {
	if rg.MaxResponseLength == 0 {
		return
	}
	if rg.MaxResponseLength < MinReasonableResponseLength {
		report.addWarning(
			"max_response_length %d is below %d and will likely truncate answers",
			rg.MaxResponseLength, MinReasonableResponseLength)
	}
	if rg.MaxResponseLength > MaxReasonableResponseLength {
		report.addWarning(
			"max_response_length %d is above %d and will likely produce verbose, costly answers",
			rg.MaxResponseLength, MaxReasonableResponseLength)
	}
}

// checkBoundaries warns when strict mode is enabled with no declared
// sources: such a policy can answer nothing, which is almost always an
// authoring mistake rather than intent.
func (v *Validator) checkBoundaries(kb *scope.KnowledgeBoundaries, report *ValidationReport) {
	if kb.StrictMode && len(kb.AllowedSources) == 0 {
		report.addWarning(
			"strict_mode is enabled but allowed_sources is empty; the bot will be unable to answer anything")
	}
	if kb.Preference != "" && !kb.Preference.Valid() {
		report.addError("unknown context_preference %q", kb.Preference)
	}
}

// checkFilters appends findings for dataset filters.
func (v *Validator) checkFilters(filters *scope.DatasetFilters, report *ValidationReport) {
	// A pattern on both sides is a dead rule: exclude always wins.
	for _, inc := range filters.IncludePatterns {
		for _, exc := range filters.ExcludePatterns {
			if patternsCollide(inc, exc) {
				report.addWarning(
					"pattern %q appears in both include_patterns and exclude_patterns; exclude wins and the include entry is dead",
					inc)
			}
		}
	}

	for _, p := range filters.IncludePatterns {
		if strings.TrimSpace(p) == "" {
			report.addWarning("empty include pattern never matches and should be removed")
		}
	}
	for _, p := range filters.ExcludePatterns {
		if strings.TrimSpace(p) == "" {
			report.addWarning("empty exclude pattern never matches and should be removed")
		}
	}
}

// topicsOverlap reports whether one topic is a case-insensitive substring
// of the other, in either direction. Deliberately heuristic.
func topicsOverlap(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// patternsCollide reports whether two patterns are equal exactly or after
// stripping wildcards, case-insensitively.
func patternsCollide(a, b string) bool {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	if la == lb {
		return true
	}
	return strings.ReplaceAll(la, "*", "") == strings.ReplaceAll(lb, "*", "")
}
