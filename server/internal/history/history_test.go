package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	now := time.Date(2025, 8, 10, 15, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestRecordAndRecent(t *testing.T) {
	s, now := openTestStore(t)
	ctx := context.Background()
	mac := "b8:27:eb:01:02:03"

	if err := s.Record(ctx, mac, "SAFE", "LIVE", "live"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	*now = now.Add(time.Minute)
	if err := s.Record(ctx, mac, "DANGER", "LIVE", "live"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := s.Recent(ctx, mac, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Level != "DANGER" || entries[1].Level != "SAFE" {
		t.Errorf("order wrong: %v %v", entries[0].Level, entries[1].Level)
	}
	if entries[0].Source != "live" {
		t.Errorf("Source = %q", entries[0].Source)
	}
}

func TestRecordSkipsRepeats(t *testing.T) {
	s, now := openTestStore(t)
	ctx := context.Background()
	mac := "b8:27:eb:01:02:03"

	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, mac, "CAUTION", "LIVE", "live"); err != nil {
			t.Fatalf("Record: %v", err)
		}
		*now = now.Add(time.Second)
	}

	entries, err := s.Recent(ctx, mac, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("repeated level recorded %d times, want 1", len(entries))
	}
}

func TestRecentIsPerDevice(t *testing.T) {
	s, now := openTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, "aa:aa:aa:aa:aa:aa", "SAFE", "LIVE", "live"); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(time.Second)
	if err := s.Record(ctx, "bb:bb:bb:bb:bb:bb", "DANGER", "TEST", "test"); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Recent(ctx, "aa:aa:aa:aa:aa:aa", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Level != "SAFE" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestPrune(t *testing.T) {
	s, now := openTestStore(t)
	ctx := context.Background()
	mac := "b8:27:eb:01:02:03"

	if err := s.Record(ctx, mac, "SAFE", "LIVE", "live"); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(48 * time.Hour)
	if err := s.Record(ctx, mac, "DANGER", "LIVE", "live"); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	entries, err := s.Recent(ctx, mac, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Level != "DANGER" {
		t.Errorf("entries after prune = %+v", entries)
	}
}
