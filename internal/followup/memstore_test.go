package followup

import (
	"context"
	"testing"
	"time"

	"github.com/daniel5812/brain-dump-server/internal/intent"
)

func TestMemStoreRoundtrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore(0)

	p := Pending{
		IntentType: intent.HypothesisMeeting,
		Title:      "פגישה עם דני",
		Missing:    intent.NeedTime,
		Date:       "2026-01-22",
		CreatedAt:  time.Now(),
	}
	if err := s.Set(ctx, "user-1", p); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(ctx, "user-1")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if got.Title != p.Title || got.Missing != p.Missing || got.Date != p.Date {
		t.Fatalf("Get = %+v, want %+v", got, p)
	}

	if _, ok, _ := s.Get(ctx, "user-2"); ok {
		t.Fatal("Get for unknown user should report absent")
	}
}

func TestMemStoreDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore(0)

	if err := s.Set(ctx, "user-1", Pending{Title: "פגישה", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "user-1"); ok {
		t.Fatal("record should be gone after Delete")
	}

	if err := s.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("Delete of missing record: %v", err)
	}
}

func TestMemStoreExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2026, time.January, 21, 12, 0, 0, 0, time.UTC)
	s := NewMemStore(24 * time.Hour)
	s.now = func() time.Time { return now }

	fresh := Pending{Title: "טרי", CreatedAt: now.Add(-time.Hour)}
	stale := Pending{Title: "ישן", CreatedAt: now.Add(-25 * time.Hour)}
	if err := s.Set(ctx, "fresh", fresh); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "stale", stale); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, ok, _ := s.Get(ctx, "stale"); ok {
		t.Fatal("expired record must be reported absent")
	}
	if _, ok, _ := s.Get(ctx, "fresh"); !ok {
		t.Fatal("fresh record must still be visible")
	}

	removed, err := s.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("Purge removed %d, want 1", removed)
	}
}
