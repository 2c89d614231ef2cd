package engine

import (
	"fmt"
	"strings"
)

// GuidelineResult is the outcome of applying response guidelines to a
// generated answer.
type GuidelineResult struct {
	// Text is the answer after guideline application (possibly truncated).
	Text string

	// Truncated reports whether the answer was cut to the length limit.
	Truncated bool

	// MissingCitations reports that citations are required but the answer
	// carries none. The pipeline decides how to react (regenerate, append
	// a notice); this engine only detects.
	MissingCitations bool
}

// ApplyGuidelines enforces the policy's response guidelines on a generated
// answer: truncates to MaxResponseLength words and flags a missing-citation
// violation when RequireCitations is set.
func ApplyGuidelines(policy *EffectivePolicy, answer string) GuidelineResult {
	result := GuidelineResult{Text: answer}

	limit := policy.Response.MaxResponseLength
	if limit > 0 {
		words := strings.Fields(answer)
		if len(words) > limit {
			result.Text = strings.Join(words[:limit], " ")
			result.Truncated = true
		}
	}

	if policy.Response.RequireCitations && !hasCitation(result.Text) {
		result.MissingCitations = true
	}

	return result
}

// hasCitation heuristically detects a citation marker in the answer:
// bracketed references ("[1]", "[source]") or an explicit source line.
func hasCitation(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "source:") || strings.Contains(lower, "sources:") {
		return true
	}
	open := strings.IndexByte(text, '[')
	return open >= 0 && strings.IndexByte(text[open:], ']') > 0
}

// PromptDirectives renders the policy as system-prompt restriction text for
// the chat pipeline. Returns an empty string when the policy imposes no
// restrictions worth stating.
func PromptDirectives(policy *EffectivePolicy) string {
	var directives []string

	if policy.Boundaries.StrictMode {
		directives = append(directives,
			"You must ONLY use information from the provided context and knowledge base. "+
				"Do not use your general training knowledge for answers.")
	}

	if len(policy.Boundaries.AllowedSources) > 0 {
		directives = append(directives, fmt.Sprintf(
			"Only reference information from these sources: %s.",
			strings.Join(policy.Boundaries.AllowedSources, ", ")))
	}

	if policy.HasAllowList() {
		directives = append(directives, fmt.Sprintf(
			"You only answer questions related to: %s. "+
				"Politely redirect questions outside these topics.",
			strings.Join(policy.AllowedTopics, ", ")))
	}

	if len(policy.ForbiddenTopics) > 0 {
		directives = append(directives, fmt.Sprintf(
			"Never discuss or provide information about: %s. "+
				"Always decline such requests politely.",
			strings.Join(policy.ForbiddenTopics, ", ")))
	}

	if policy.Response.MaxResponseLength > 0 {
		directives = append(directives, fmt.Sprintf(
			"Keep responses under %d words.", policy.Response.MaxResponseLength))
	}
	if policy.Response.RequireCitations {
		directives = append(directives,
			"Always cite your sources when using information from the context.")
	}
	if policy.Response.StepByStep {
		directives = append(directives,
			"Explain your reasoning step by step.")
	}
	if policy.Response.MathematicalNotation {
		directives = append(directives,
			"Use proper mathematical notation in formulas and derivations.")
	}

	if len(directives) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("KNOWLEDGE AND SCOPE RESTRICTIONS:\n")
	for _, d := range directives {
		sb.WriteString("- ")
		sb.WriteString(d)
		sb.WriteString("\n")
	}
	return sb.String()
}
