// Tessera Meridian is a scope and guardrail policy resolution engine for
// multi-tenant chatbot deployments.
//
// It loads declarative scope definitions (topic guardrails, knowledge
// boundaries, response guidelines, dataset filters) from YAML, resolves the
// scopes assigned to a bot into a single effective policy, and answers
// enforcement questions about topics and retrieval candidates.
//
// Usage:
//
//	# Run the resolution daemon (watches scope files, serves metrics)
//	meridian run
//
//	# Validate scope definition files
//	meridian validate --dir scopes/
//
//	# Resolve the effective policy for a bot
//	meridian resolve --bot support-bot
//
//	# Check a topic or a retrieval candidate against a bot's policy
//	meridian check topic --bot support-bot "returns and refunds"
//	meridian check content --bot support-bot --tag public --category faq
//
//	# Query the decision audit trail
//	meridian audit query --bot support-bot --kind topic_check
//
//	# Show version information
//	meridian version
package main

func main() {
	Execute()
}
