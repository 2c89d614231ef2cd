// Package audit defines the decision record model and storage contract for
// the guardrail audit trail. Every policy resolution, topic check, and
// content admission decision can be captured as a DecisionRecord and
// persisted for compliance review.
//
// Subpackages:
//   - recorder: async recording that implements the engine observer contract
//   - storage: SQLite and in-memory storage backends
//   - retention: age and count based pruning on a cron schedule
package audit
