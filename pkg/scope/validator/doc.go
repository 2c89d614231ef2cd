// Package validator performs advisory conflict validation of scope
// configurations before they are saved or activated.
//
// The validator inspects a single GuardrailConfig and its paired
// DatasetFilters for internal contradictions an author is likely to get
// wrong: allowed topics that textually overlap forbidden topics (resolution
// is forbid-wins, which may surprise the author), strict mode with no
// declared sources, response length bounds that truncate or balloon answers,
// and patterns that appear on both the include and exclude side (dead rules,
// since exclude always wins during filtering).
//
// The component is purely advisory. It never mutates the config, never
// decides admission, and warnings never block a save; only the handful of
// hard authoring errors (such as an empty name on a scope intended for
// activation) do. Topic overlap detection is deliberately heuristic:
// natural-language topic strings make exact contradiction detection
// undecidable, so the substring check stays a best-effort warning.
package validator
