package audit

import (
	"context"
	"time"
)

// Decision record kinds.
const (
	KindResolution   = "resolution"
	KindTopicCheck   = "topic_check"
	KindContentCheck = "content_check"
)

// DecisionRecord represents a single guardrail decision: a policy resolution
// for a bot, a topic admissibility check, or a content admission check.
type DecisionRecord struct {
	// Identity
	ID string `json:"id"` // UUID v4

	// RecordedTime is when the decision was made.
	RecordedTime time.Time `json:"recorded_time"`

	// Kind is one of KindResolution, KindTopicCheck, KindContentCheck.
	Kind string `json:"kind"`

	// BotID identifies the bot the decision was made for. Empty for topic
	// and content checks made against a standalone policy.
	BotID string `json:"bot_id"`

	// Fingerprint is the effective policy fingerprint the decision was
	// made under. Ties the record to an exact scope set.
	Fingerprint string `json:"fingerprint"`

	// ScopeIDs are the ids of the scopes that produced the policy.
	ScopeIDs []string `json:"scope_ids"`

	// Decision is the outcome: "resolved", "conflict", "error" for
	// resolutions; "allowed", "forbidden", "unrestricted" for topic
	// checks; "admitted", "rejected" for content checks.
	Decision string `json:"decision"`

	// Cached reports whether a resolution was served from cache.
	Cached bool `json:"cached"`

	// Subject is what was checked: a topic text excerpt or a document id.
	Subject string `json:"subject"`

	// Detail carries the error message for failed resolutions.
	Detail string `json:"detail"`

	// Elapsed is how long the decision took.
	Elapsed time.Duration `json:"elapsed"`
}

// Query defines filter parameters for querying decision records.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	BotID       string `json:"bot_id,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Decision    string `json:"decision,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for decision record storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists a decision record.
	Store(ctx context.Context, record *DecisionRecord) error

	// Query retrieves decision records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*DecisionRecord, error)

	// Count returns the number of decision records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes decision records matching the query filters.
	// Returns the number of records deleted.
	// Used for retention policy enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}
