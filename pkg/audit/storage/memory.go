package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tessera-hq/meridian/pkg/audit"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This implementation is intended for testing only and should not be used in production.
type MemoryStorage struct {
	records map[string]*audit.DecisionRecord
	mu      sync.RWMutex
}

var _ audit.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*audit.DecisionRecord),
	}
}

// Store persists a decision record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *audit.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves decision records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*audit.DecisionRecord
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	asc := strings.EqualFold(query.SortOrder, "asc")
	sort.Slice(results, func(i, j int) bool {
		if asc {
			return results[i].RecordedTime.Before(results[j].RecordedTime)
		}
		return results[i].RecordedTime.After(results[j].RecordedTime)
	})

	start := query.Offset
	if start > len(results) {
		return []*audit.DecisionRecord{}, nil
	}

	if query.Limit > 0 {
		end := start + query.Limit
		if end > len(results) {
			end = len(results)
		}
		results = results[start:end]
	} else if start > 0 {
		results = results[start:]
	}

	return results, nil
}

// Count returns the number of decision records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes decision records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, query) {
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Close releases resources (no-op for memory storage).
func (s *MemoryStorage) Close() error {
	return nil
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *audit.DecisionRecord, query *audit.Query) bool {
	if query.StartTime != nil && record.RecordedTime.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.RecordedTime.After(*query.EndTime) {
		return false
	}
	if query.BotID != "" && record.BotID != query.BotID {
		return false
	}
	if query.Kind != "" && record.Kind != query.Kind {
		return false
	}
	if query.Decision != "" && record.Decision != query.Decision {
		return false
	}
	if query.Fingerprint != "" && record.Fingerprint != query.Fingerprint {
		return false
	}
	return true
}
