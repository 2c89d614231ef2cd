package engine

import (
	"strings"
)

// Decision is the three-valued outcome of a topic check. A boolean is not
// enough: "no allow-list configured" and "explicitly allowed" are different
// inputs for the chat pipeline's refusal-message logic.
type Decision string

const (
	// DecisionAllowed means the text matched the configured allow-list.
	DecisionAllowed Decision = "allowed"

	// DecisionForbidden means the text hit a forbidden topic, or missed a
	// configured allow-list entirely. The pipeline must substitute the
	// policy's refusal message instead of invoking the model.
	DecisionForbidden Decision = "forbidden"

	// DecisionUnrestricted means no allow-list is configured: everything
	// not explicitly forbidden is permitted.
	DecisionUnrestricted Decision = "unrestricted"
)

// CheckTopic classifies candidate text against the policy's topic rules.
//
// Forbidden topics are checked first: if the text case-insensitively
// contains any forbidden entry the decision is DecisionForbidden regardless
// of the allow-list. Otherwise, with a non-empty allow-list, the text must
// contain at least one allowed entry to be DecisionAllowed; a miss is
// DecisionForbidden (fail closed - an allow-list that admitted off-list
// queries would be no restriction at all). With no allow-list the decision
// is DecisionUnrestricted.
func CheckTopic(policy *EffectivePolicy, text string) Decision {
	lower := strings.ToLower(text)

	for _, topic := range policy.ForbiddenTopics {
		if topic != "" && strings.Contains(lower, strings.ToLower(topic)) {
			return DecisionForbidden
		}
	}

	if !policy.HasAllowList() {
		return DecisionUnrestricted
	}

	for _, topic := range policy.AllowedTopics {
		if topic != "" && strings.Contains(lower, strings.ToLower(topic)) {
			return DecisionAllowed
		}
	}

	return DecisionForbidden
}
