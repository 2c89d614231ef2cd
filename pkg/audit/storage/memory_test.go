package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tessera-hq/meridian/pkg/audit"
)

func seedRecords(t *testing.T, s audit.Storage, n int, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		record := &audit.DecisionRecord{
			ID:           fmt.Sprintf("rec-%03d", i),
			RecordedTime: base.Add(time.Duration(i) * time.Minute),
			Kind:         audit.KindTopicCheck,
			BotID:        "bot-1",
			Decision:     "allowed",
		}
		if i%2 == 1 {
			record.Kind = audit.KindResolution
			record.Decision = "resolved"
			record.BotID = "bot-2"
		}
		if err := s.Store(context.Background(), record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}
}

func TestMemoryStorageQueryFilters(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	seedRecords(t, s, 10, base)
	ctx := context.Background()

	tests := []struct {
		name  string
		query audit.Query
		want  int
	}{
		{"no filters", audit.Query{}, 10},
		{"by bot", audit.Query{BotID: "bot-1"}, 5},
		{"by kind", audit.Query{Kind: audit.KindResolution}, 5},
		{"by decision", audit.Query{Decision: "allowed"}, 5},
		{"no match", audit.Query{BotID: "bot-404"}, 0},
		{"bot and kind", audit.Query{BotID: "bot-2", Kind: audit.KindResolution}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(ctx, &tt.query)
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Query() = %d records, want %d", len(got), tt.want)
			}

			count, err := s.Count(ctx, &tt.query)
			if err != nil {
				t.Fatalf("Count() failed: %v", err)
			}
			if count != int64(tt.want) {
				t.Errorf("Count() = %d, want %d", count, tt.want)
			}
		})
	}
}

func TestMemoryStorageTimeRange(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	seedRecords(t, s, 10, base)

	start := base.Add(3 * time.Minute)
	end := base.Add(6 * time.Minute)
	got, err := s.Query(context.Background(), &audit.Query{StartTime: &start, EndTime: &end})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("Query() = %d records, want 4 (inclusive bounds)", len(got))
	}
}

func TestMemoryStorageSortAndPagination(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	seedRecords(t, s, 10, base)
	ctx := context.Background()

	desc, err := s.Query(ctx, &audit.Query{Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(desc) != 3 || desc[0].ID != "rec-009" {
		t.Errorf("default sort: got %d records, first %q, want newest first", len(desc), desc[0].ID)
	}

	asc, err := s.Query(ctx, &audit.Query{Limit: 3, SortOrder: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	if asc[0].ID != "rec-000" {
		t.Errorf("asc sort: first = %q, want rec-000", asc[0].ID)
	}

	page, err := s.Query(ctx, &audit.Query{Limit: 3, Offset: 8, SortOrder: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Errorf("offset page = %d records, want 2", len(page))
	}

	past, err := s.Query(ctx, &audit.Query{Offset: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(past) != 0 {
		t.Errorf("offset past end = %d records, want 0", len(past))
	}
}

func TestMemoryStorageDelete(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	seedRecords(t, s, 10, base)
	ctx := context.Background()

	cutoff := base.Add(4 * time.Minute)
	deleted, err := s.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if deleted != 5 {
		t.Errorf("Delete() = %d, want 5", deleted)
	}

	remaining, err := s.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 5 {
		t.Errorf("remaining = %d, want 5", remaining)
	}
}

func TestMemoryStorageStoreCopies(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	record := &audit.DecisionRecord{ID: "rec-1", Decision: "allowed"}
	if err := s.Store(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	record.Decision = "mutated"

	got, err := s.Query(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Decision != "allowed" {
		t.Error("stored record shares memory with the caller's value")
	}
}
