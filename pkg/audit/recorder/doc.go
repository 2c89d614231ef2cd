// Package recorder records guardrail decisions asynchronously. It implements
// the policy engine's observer contract, so attaching a Recorder to the
// enforcer is all it takes to build an audit trail: decisions are enqueued
// on a buffered channel and a background worker drains them to storage,
// keeping the request path free of storage latency.
package recorder
