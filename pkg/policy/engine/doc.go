// Package engine resolves the set of active scopes assigned to a bot into a
// single enforceable EffectivePolicy, and evaluates that policy at the two
// enforcement points: content admission for the retrieval pipeline and topic
// checking for the chat pipeline.
//
// # Architecture
//
// The engine is built leaf-first from pure components:
//
//  1. Pattern Matcher - evaluates a single glob-style pattern ('*' wildcard
//     only, case-insensitive) against a candidate identifier
//  2. Dataset Filter Evaluator - admits or rejects one document against one
//     DatasetFilters rule set, exclude-first
//  3. Policy Resolver - merges the guardrails and filters of all active
//     scopes into one immutable EffectivePolicy
//  4. Enforcer - the narrow facade exposed to the retrieval and chat
//     pipelines, wiring caching, metrics, logging, and audit recording
//     around the pure core
//
// # Merge semantics
//
// The resolver is commutative: scope assignment is an unordered set, so the
// same scopes in any order produce a bit-for-bit identical policy. Restrictive
// rules always override permissive ones when they conflict:
//
//   - topic allow/forbid lists are unioned, then any allowed entry that
//     overlaps a forbidden entry (case-insensitive substring, either
//     direction) is dropped - forbid wins, re-applied after union so a topic
//     allowed by one scope and forbidden by another ends up forbidden
//   - strict mode and boolean response guidelines are OR-ed
//   - context preference takes the most restrictive value present
//     (exclusive > prefer > supplement)
//   - max response length takes the minimum specified value
//   - exclude patterns are unioned (deny broadens), include patterns, tags,
//     categories and allowed sources are unioned (safe to broaden: every
//     candidate still passes filtering individually)
//   - metadata filters are unioned; two scopes assigning different values to
//     the same key is an unresolvable contradiction and raises ConflictError
//     rather than being silently resolved
//
// Resolution never silently weakens a policy: on error the caller must fail
// closed (refuse to answer) rather than fall back to a more permissive
// result.
//
// # Purity and concurrency
//
// Every operation here is a deterministic, side-effect-free transformation
// of immutable inputs. Resolution results are safe to compute concurrently
// for different bots and to cache keyed by the contributing scope ids and
// update timestamps (see pkg/policy/cache). The Enforcer adds the only
// stateful concerns (cache, metrics, audit) around the pure core.
//
// # Basic usage
//
//	enf := engine.NewEnforcer(nil)
//	policy, err := enf.Resolve(ctx, botID, activeScopes)
//	if err != nil {
//	    // unresolvable conflict: refuse to answer
//	}
//	for _, doc := range candidates {
//	    if enf.IsContentAdmitted(policy, doc) {
//	        // include doc in retrieval context
//	    }
//	}
//	switch enf.CheckTopic(policy, query) {
//	case engine.DecisionForbidden:
//	    // substitute policy.RefusalMessage
//	case engine.DecisionAllowed, engine.DecisionUnrestricted:
//	    // proceed to the model
//	}
package engine
