package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/tatd3v/ballroom-calendar-client/internal/cache"
	"github.com/tatd3v/ballroom-calendar-client/internal/event"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := &Snapshot{Store: cache.NewMemoryStore(), Now: fixedClock(now)}

	events := []event.Event{
		{ID: "1", Title: "Milonga", City: "Bogota", Date: "2025-03-01", Start: "2025-03-01"},
	}
	if err := s.Save(ctx, events); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].ID != "1" || got[0].Title != "Milonga" {
		t.Fatalf("loaded %+v", got)
	}
}

func TestLoad_TTLBoundary(t *testing.T) {
	ctx := context.Background()
	saved := time.Now()
	s := &Snapshot{Store: cache.NewMemoryStore(), Now: fixedClock(saved)}
	if err := s.Save(ctx, []event.Event{{ID: "1", Date: "2025-03-01"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// One millisecond short of TTL: still a hit.
	s.Now = fixedClock(saved.Add(TTL - time.Millisecond))
	if _, ok, err := s.Load(ctx); err != nil || !ok {
		t.Fatalf("load at TTL-1ms: ok=%v err=%v, want hit", ok, err)
	}

	// One millisecond past: miss, and both keys removed.
	s.Now = fixedClock(saved.Add(TTL + time.Millisecond))
	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("load at TTL+1ms: ok=%v err=%v, want miss", ok, err)
	}
	s.Now = fixedClock(saved)
	if _, ok, _ := s.Load(ctx); ok {
		t.Fatal("expired snapshot must be deleted, not resurrected")
	}
}

func TestSave_EmptyClearsExisting(t *testing.T) {
	ctx := context.Background()
	s := &Snapshot{Store: cache.NewMemoryStore(), Now: fixedClock(time.Now())}
	if err := s.Save(ctx, []event.Event{{ID: "1", Date: "2025-03-01"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, nil); err != nil {
		t.Fatalf("empty save: %v", err)
	}
	if _, ok, _ := s.Load(ctx); ok {
		t.Fatal("empty save must clear the snapshot, not keep the old one")
	}
}

func TestLoad_MissingTimestampIsMiss(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	_ = store.Set(ctx, "calendar_events_cache", []byte(`[{"id":"1"}]`), 0)
	s := &Snapshot{Store: store, Now: fixedClock(time.Now())}
	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("load without timestamp: ok=%v err=%v, want miss", ok, err)
	}
}

func TestLoad_CorruptPayloadIsMiss(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	_ = store.Set(ctx, "calendar_events_cache", []byte(`{not json`), 0)
	_ = store.Set(ctx, "calendar_events_cache_time", []byte("1"), 0)
	s := &Snapshot{Store: store, Now: fixedClock(time.UnixMilli(2))}

	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("corrupt payload: ok=%v err=%v, want miss", ok, err)
	}
	// Corruption clears both keys.
	if _, found, _ := store.Get(ctx, "calendar_events_cache"); found {
		t.Fatal("corrupt payload should have been cleared")
	}
}

func TestLoad_CorruptTimestampIsMiss(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	_ = store.Set(ctx, "calendar_events_cache", []byte(`[]`), 0)
	_ = store.Set(ctx, "calendar_events_cache_time", []byte("yesterday"), 0)
	s := &Snapshot{Store: store, Now: fixedClock(time.Now())}
	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("corrupt timestamp: ok=%v err=%v, want miss", ok, err)
	}
}
