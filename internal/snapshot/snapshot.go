// Package snapshot persists the most recent first-page event list so a
// fresh start can paint instantly and an offline start still has data.
// Only the untranslated, unfiltered first page is ever stored.
package snapshot

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/tatd3v/ballroom-calendar-client/internal/cache"
	"github.com/tatd3v/ballroom-calendar-client/internal/event"
)

const (
	eventsKey = "calendar_events_cache"
	timeKey   = "calendar_events_cache_time"

	// TTL after which a stored snapshot is discarded, never merged.
	TTL = time.Hour
)

type Snapshot struct {
	Store cache.Store

	// Now is overridable for TTL tests; nil means time.Now.
	Now func() time.Time
}

func (s *Snapshot) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Save stores the list and a write timestamp. An empty list clears any
// prior snapshot instead of writing: an empty result must never mask a
// previously cached list as fresh data.
func (s *Snapshot) Save(ctx context.Context, events []event.Event) error {
	if len(events) == 0 {
		return s.Clear(ctx)
	}
	b, err := json.Marshal(events)
	if err != nil {
		return err
	}
	if err := s.Store.Set(ctx, eventsKey, b, 0); err != nil {
		return err
	}
	ts := strconv.FormatInt(s.now().UnixMilli(), 10)
	return s.Store.Set(ctx, timeKey, []byte(ts), 0)
}

// Load returns the stored list if it exists and is younger than TTL.
// A missing timestamp, an expired entry, or a corrupt payload all count
// as a miss; expired and corrupt entries are cleared on the way out.
func (s *Snapshot) Load(ctx context.Context) ([]event.Event, bool, error) {
	raw, ok, err := s.Store.Get(ctx, timeKey)
	if err != nil || !ok {
		return nil, false, err
	}
	ts, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, false, s.Clear(ctx)
	}
	age := s.now().UnixMilli() - ts
	if age >= TTL.Milliseconds() {
		return nil, false, s.Clear(ctx)
	}
	b, ok, err := s.Store.Get(ctx, eventsKey)
	if err != nil || !ok {
		return nil, false, err
	}
	var events []event.Event
	if err := json.Unmarshal(b, &events); err != nil {
		return nil, false, s.Clear(ctx)
	}
	return events, true, nil
}

// Clear removes both keys unconditionally.
func (s *Snapshot) Clear(ctx context.Context) error {
	if err := s.Store.Delete(ctx, eventsKey); err != nil {
		return err
	}
	return s.Store.Delete(ctx, timeKey)
}
