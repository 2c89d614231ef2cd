package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tessera-hq/meridian/pkg/audit"
	auditstorage "tessera-hq/meridian/pkg/audit/storage"
)

func seedAged(t *testing.T, s audit.Storage, ageDays []int) {
	t.Helper()
	now := time.Now()
	for i, age := range ageDays {
		record := &audit.DecisionRecord{
			ID:           fmt.Sprintf("rec-%03d", i),
			RecordedTime: now.AddDate(0, 0, -age),
			Kind:         audit.KindTopicCheck,
			Decision:     "allowed",
		}
		if err := s.Store(context.Background(), record); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPruneByAge(t *testing.T) {
	storage := auditstorage.NewMemoryStorage()
	defer storage.Close()
	seedAged(t, storage, []int{1, 10, 45, 100, 200})

	pruner := NewPruner(storage, &Config{RetentionDays: 90})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2 (the 100 and 200 day old records)", deleted)
	}

	remaining, err := storage.Count(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 3 {
		t.Errorf("remaining = %d, want 3", remaining)
	}
}

func TestPruneByCount(t *testing.T) {
	storage := auditstorage.NewMemoryStorage()
	defer storage.Close()
	seedAged(t, storage, []int{1, 2, 3, 4, 5, 6, 7, 8})

	pruner := NewPruner(storage, &Config{RetentionDays: 0, MaxRecords: 5})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3 oldest", deleted)
	}

	records, err := storage.Query(context.Background(), &audit.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Fatalf("remaining = %d, want 5", len(records))
	}
	// The oldest survivor is the 5-day-old record.
	if records[0].ID != "rec-004" {
		t.Errorf("oldest survivor = %q, want rec-004", records[0].ID)
	}
}

// Count-based pruning deletes by inclusive cutoff timestamp: every record
// tied with the cutoff goes, so the survivor count may drop below
// max_records when old records share a timestamp.
func TestPruneByCountDeletesTimestampTies(t *testing.T) {
	storage := auditstorage.NewMemoryStorage()
	defer storage.Close()

	old := time.Now().Add(-48 * time.Hour)
	times := []time.Time{old, old, old, old, time.Now().Add(-time.Hour), time.Now()}
	for i, ts := range times {
		record := &audit.DecisionRecord{
			ID:           fmt.Sprintf("rec-%03d", i),
			RecordedTime: ts,
			Kind:         audit.KindTopicCheck,
			Decision:     "allowed",
		}
		if err := storage.Store(context.Background(), record); err != nil {
			t.Fatal(err)
		}
	}

	pruner := NewPruner(storage, &Config{RetentionDays: 0, MaxRecords: 4})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	// toDelete is 2, but all four tied records share the cutoff timestamp.
	if deleted != 4 {
		t.Errorf("deleted = %d, want 4 (all records tied with the cutoff)", deleted)
	}

	records, err := storage.Query(context.Background(), &audit.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("remaining = %d, want 2", len(records))
	}
	if records[0].ID != "rec-004" || records[1].ID != "rec-005" {
		t.Errorf("survivors = %q, %q, want rec-004, rec-005", records[0].ID, records[1].ID)
	}
}

func TestPruneCountWithinLimit(t *testing.T) {
	storage := auditstorage.NewMemoryStorage()
	defer storage.Close()
	seedAged(t, storage, []int{1, 2})

	pruner := NewPruner(storage, &Config{RetentionDays: 0, MaxRecords: 10})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestPruneDisabled(t *testing.T) {
	storage := auditstorage.NewMemoryStorage()
	defer storage.Close()
	seedAged(t, storage, []int{500})

	pruner := NewPruner(storage, &Config{RetentionDays: 0, MaxRecords: 0})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0 with retention disabled", deleted)
	}
}

func TestPruneBothPhases(t *testing.T) {
	storage := auditstorage.NewMemoryStorage()
	defer storage.Close()
	seedAged(t, storage, []int{1, 2, 3, 100, 200})

	pruner := NewPruner(storage, &Config{RetentionDays: 90, MaxRecords: 2})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	// Age phase removes two, count phase removes one more.
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	remaining, err := storage.Count(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 2 {
		t.Errorf("remaining = %d, want 2", remaining)
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	storage := auditstorage.NewMemoryStorage()
	defer storage.Close()

	pruner := NewPruner(storage, &Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
	})

	if err := pruner.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer pruner.Stop()

	next := pruner.NextPruning()
	if next == nil || next.Before(time.Now()) {
		t.Errorf("NextPruning() = %v, want a future time", next)
	}
}

func TestSchedulerRejectsBadExpression(t *testing.T) {
	storage := auditstorage.NewMemoryStorage()
	defer storage.Close()

	pruner := NewPruner(storage, &Config{PruneSchedule: "not a cron"})
	if err := pruner.Start(context.Background()); err == nil {
		pruner.Stop()
		t.Error("Start() with invalid schedule = nil error")
	}
}
