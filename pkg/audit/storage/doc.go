// Package storage provides storage backends for guardrail decision records.
//
// SQLiteStorage is the production backend: durable, queryable, and safe for
// concurrent use. MemoryStorage is for testing only.
package storage
