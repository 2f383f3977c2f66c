package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tatd3v/ballroom-calendar-client/internal/api"
	"github.com/tatd3v/ballroom-calendar-client/internal/cache"
	"github.com/tatd3v/ballroom-calendar-client/internal/event"
	"github.com/tatd3v/ballroom-calendar-client/internal/snapshot"
	"github.com/tatd3v/ballroom-calendar-client/internal/translate"
)

func writeEvents(w http.ResponseWriter, events []event.Event) {
	_ = json.NewEncoder(w).Encode(events)
}

func newTestFeed(t *testing.T, handler http.Handler) (*Feed, *httptest.Server, *cache.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := cache.NewMemoryStore()
	f := New(
		&api.Client{BaseURL: srv.URL},
		&snapshot.Snapshot{Store: store},
		nil,
		nil,
	)
	return f, srv, store
}

func TestRefresh_ReplacesCollectionAndCaches(t *testing.T) {
	f, _, store := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, []event.Event{
			{ID: "1", Title: "Milonga", City: "Bogota", Start: "2025-03-01"},
			{ID: "2", Title: "Practica", City: "Cali", Date: "2025-03-02"},
		})
	}))

	ctx := context.Background()
	f.Refresh(ctx)

	if got := f.State(); got != StateReady {
		t.Fatalf("state = %s, want ready", got)
	}
	events := f.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Normalization ran: date and start agree for both alias directions.
	if events[0].Date != "2025-03-01" || events[0].Start != "2025-03-01" {
		t.Fatalf("event 1 not normalized: %+v", events[0])
	}
	if events[1].Start != "2025-03-02" {
		t.Fatalf("event 2 not normalized: %+v", events[1])
	}

	// First page got cached.
	snap := &snapshot.Snapshot{Store: store}
	cached, ok, err := snap.Load(ctx)
	if err != nil || !ok || len(cached) != 2 {
		t.Fatalf("snapshot after refresh: ok=%v err=%v n=%d", ok, err, len(cached))
	}
}

func TestRefresh_FailureFallsBackToSnapshot(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, `{"error":"down"}`, http.StatusServiceUnavailable)
			return
		}
		writeEvents(w, []event.Event{{ID: "1", City: "Bogota", Date: "2025-03-01"}})
	}))

	ctx := context.Background()
	f.Refresh(ctx) // warm the snapshot
	healthy.Store(false)
	f.Refresh(ctx)

	if got := f.State(); got != StateReady {
		t.Fatalf("state = %s, want ready from cache", got)
	}
	if events := f.Events(); len(events) != 1 || events[0].ID != "1" {
		t.Fatalf("events = %+v, want cached event 1", events)
	}
	// Cache is a finite offline slice.
	if f.HasMore() {
		t.Fatal("hasMore must be false when serving from snapshot")
	}
}

func TestRefresh_FailureWithoutSnapshotFails(t *testing.T) {
	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"down"}`, http.StatusInternalServerError)
	}))
	f.Refresh(context.Background())
	if got := f.State(); got != StateFailed {
		t.Fatalf("state = %s, want failed", got)
	}
	if events := f.Events(); len(events) != 0 {
		t.Fatalf("events = %+v, want empty", events)
	}
}

func TestRefresh_EmptyResultClearsSnapshot(t *testing.T) {
	var empty atomic.Bool
	f, _, store := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if empty.Load() {
			writeEvents(w, nil)
			return
		}
		writeEvents(w, []event.Event{{ID: "1", City: "Cali", Date: "2025-03-01"}})
	}))

	ctx := context.Background()
	f.Refresh(ctx)
	empty.Store(true)
	f.Refresh(ctx)

	snap := &snapshot.Snapshot{Store: store}
	if _, ok, _ := snap.Load(ctx); ok {
		t.Fatal("empty fetch must clear the snapshot")
	}
}

func pageEvents(page, n int) []event.Event {
	out := make([]event.Event, n)
	for i := range out {
		out[i] = event.Event{
			ID:   fmt.Sprintf("p%d-%d", page, i),
			City: "Bogota",
			Date: "2025-03-01",
		}
	}
	return out
}

func TestLoadMore_AppendsInServerOrder(t *testing.T) {
	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "2":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"events":     pageEvents(2, 2),
				"pagination": map[string]any{"hasMore": false, "total": 4, "page": 2},
			})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"events":     pageEvents(1, 2),
				"pagination": map[string]any{"hasMore": true, "total": 4, "page": 1},
			})
		}
	}))

	ctx := context.Background()
	f.Refresh(ctx)
	if !f.HasMore() {
		t.Fatal("hasMore should be true after page 1")
	}
	f.LoadMore(ctx, 2)

	events := f.Events()
	wantIDs := []string{"p1-0", "p1-1", "p2-0", "p2-1"}
	if len(events) != len(wantIDs) {
		t.Fatalf("got %d events, want %d", len(events), len(wantIDs))
	}
	for i, id := range wantIDs {
		if events[i].ID != id {
			t.Fatalf("events[%d].ID = %s, want %s (order must be page order)", i, events[i].ID, id)
		}
	}
	if f.HasMore() || f.Total() != 4 || f.Page() != 2 {
		t.Fatalf("pagination: hasMore=%v total=%d page=%d", f.HasMore(), f.Total(), f.Page())
	}

	// Exhausted: further LoadMore is a no-op.
	f.LoadMore(ctx, 2)
	if got := len(f.Events()); got != 4 {
		t.Fatalf("load more past the end grew the collection to %d", got)
	}
}

func TestLoadMore_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var page2Calls atomic.Int64

	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			page2Calls.Add(1)
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"events":     pageEvents(1, 1),
			"pagination": map[string]any{"hasMore": true, "total": 10, "page": 1},
		})
	}))

	ctx := context.Background()
	f.Refresh(ctx)

	done := make(chan struct{})
	go func() {
		f.LoadMore(ctx, 1)
		close(done)
	}()
	<-started

	// Second trigger while the first is still in flight: must be a no-op.
	f.LoadMore(ctx, 1)

	close(release)
	<-done
	if got := page2Calls.Load(); got != 1 {
		t.Fatalf("page 2 fetched %d times, want exactly 1", got)
	}
}

func TestReset_DiscardsStaleAppend(t *testing.T) {
	block := make(chan struct{})
	appendStarted := make(chan struct{}, 1)

	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			select {
			case appendStarted <- struct{}{}:
			default:
			}
			<-block
			_ = json.NewEncoder(w).Encode(map[string]any{
				"events":     pageEvents(2, 3),
				"pagination": map[string]any{"hasMore": false, "total": 5, "page": 2},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"events":     pageEvents(1, 2),
			"pagination": map[string]any{"hasMore": true, "total": 5, "page": 1},
		})
	}))

	ctx := context.Background()
	f.Refresh(ctx)

	appendDone := make(chan struct{})
	go func() {
		f.LoadMore(ctx, 3)
		close(appendDone)
	}()
	<-appendStarted

	// Reset supersedes the in-flight append.
	f.Reset(ctx)
	close(block)
	<-appendDone

	events := f.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want only the 2 from the reset fetch", len(events))
	}
	for _, e := range events {
		if e.ID == "p2-0" {
			t.Fatal("stale append leaked into the collection after reset")
		}
	}
}

func TestSetLanguage_DuringRefreshDoesNotBlockNextFetch(t *testing.T) {
	release := make(chan struct{})
	fetchStarted := make(chan struct{}, 1)
	var calls atomic.Int64

	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case fetchStarted <- struct{}{}:
			default:
			}
			<-release
		}
		writeEvents(w, []event.Event{{ID: "1", City: "Bogota", Date: "2025-03-01"}})
	}))

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		f.Refresh(ctx)
		close(done)
	}()
	<-fetchStarted

	// Supersede the in-flight refresh without issuing a fetch.
	f.SetLanguage(ctx, "en")
	close(release)
	<-done

	if got := f.State(); got == StateLoadingInitial || got == StateLoadingMore {
		t.Fatalf("discarded refresh left state %s", got)
	}

	// A fresh refresh must still go to the network and populate.
	f.Refresh(ctx)
	if got := f.State(); got != StateReady {
		t.Fatalf("state after fresh refresh = %s, want ready", got)
	}
	if events := f.Events(); len(events) != 1 {
		t.Fatalf("fresh refresh yielded %d events, want 1", len(events))
	}
	if calls.Load() != 2 {
		t.Fatalf("network calls = %d, want 2", calls.Load())
	}
}

func TestLoadMore_ConcurrentCallsDoNotSkipPages(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	pageCalls := map[string]*atomic.Int64{"2": {}, "3": {}}

	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if c, ok := pageCalls[page]; ok {
			c.Add(1)
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
			// Terminal page: stragglers arriving after the commit see
			// hasMore=false and stand down.
			_ = json.NewEncoder(w).Encode(map[string]any{
				"events":     pageEvents(2, 1),
				"pagination": map[string]any{"hasMore": false, "total": 2, "page": 2},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"events":     pageEvents(1, 1),
			"pagination": map[string]any{"hasMore": true, "total": 10, "page": 1},
		})
	}))

	ctx := context.Background()
	f.Refresh(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.LoadMore(ctx, 1)
		}()
	}
	<-started
	close(release)
	wg.Wait()

	if got := pageCalls["2"].Load(); got != 1 {
		t.Fatalf("page 2 fetched %d times, want exactly 1", got)
	}
	if got := pageCalls["3"].Load(); got != 0 {
		t.Fatalf("page 3 fetched %d times; a losing caller skipped a page", got)
	}
}

func TestSetLanguage_CanceledContextStillTranslates(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responseStatus": 200,
			"responseData":   map[string]any{"translatedText": "Dance night"},
		})
	}))
	t.Cleanup(provider.Close)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, []event.Event{{ID: "1", Title: "Noche de baile", City: "Cali", Date: "2025-03-01"}})
	}))
	t.Cleanup(upstream.Close)

	f := New(
		&api.Client{BaseURL: upstream.URL},
		nil,
		&translate.Translator{BaseURL: provider.URL, Workers: 2},
		nil,
	)
	f.Refresh(context.Background())
	ch := f.Subscribe(8)

	// A request-scoped context is already dead by the time the
	// translation run commits.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.SetLanguage(ctx, "en")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case c := <-ch:
			if c.Reason != ReasonTranslation {
				continue
			}
			if got := f.Events()[0].Title; got != "Dance night" {
				t.Fatalf("title = %q, want translated", got)
			}
			return
		case <-deadline:
			t.Fatal("translation never committed")
		}
	}
}

func TestAddUpdateDelete(t *testing.T) {
	var deleted atomic.Value
	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/events":
			var e event.Event
			_ = json.NewDecoder(r.Body).Decode(&e)
			e.ID = "3"
			_ = json.NewEncoder(w).Encode(e)
		case r.Method == http.MethodPut:
			_ = json.NewEncoder(w).Encode(map[string]any{"title": "Gran Milonga", "date": "2025-04-01"})
		case r.Method == http.MethodDelete:
			deleted.Store(r.URL.Path)
			w.WriteHeader(http.StatusOK)
		default:
			writeEvents(w, []event.Event{
				{ID: "1", City: "Bogota", Date: "2025-03-01", Title: "Milonga", Location: "Teatro"},
				{ID: "2", City: "Cali", Date: "2025-03-02", Title: "Practica"},
			})
		}
	}))

	ctx := context.Background()
	f.Refresh(ctx)

	created, err := f.Add(ctx, event.Event{Title: "Nueva", City: "Bogota", Start: "2025-05-01"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if created.ID != "3" || created.Date != "2025-05-01" {
		t.Fatalf("created = %+v", created)
	}
	if events := f.Events(); len(events) != 3 || events[2].ID != "3" {
		t.Fatalf("created event must append at the end: %+v", events)
	}

	// Update merges server fields over the local record.
	if err := f.Update(ctx, "1", map[string]any{"title": "Gran Milonga"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	events := f.Events()
	if events[0].Title != "Gran Milonga" || events[0].Date != "2025-04-01" {
		t.Fatalf("server fields not applied: %+v", events[0])
	}
	if events[0].Location != "Teatro" || events[0].City != "Bogota" {
		t.Fatalf("local fields lost in merge: %+v", events[0])
	}

	// Delete removes by id, preserving everything else.
	if err := f.Delete(ctx, "2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	events = f.Events()
	if len(events) != 2 || events[0].ID != "1" || events[1].ID != "3" {
		t.Fatalf("after delete: %+v", events)
	}
	if got := deleted.Load(); got != "/events/2" {
		t.Fatalf("deleted path = %v", got)
	}
}

func TestAdd_ValidatesBeforeNetwork(t *testing.T) {
	var calls atomic.Int64
	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEvents(w, nil)
	}))
	if _, err := f.Add(context.Background(), event.Event{Title: "sin ciudad"}); err == nil {
		t.Fatal("expected validation error")
	}
	if calls.Load() != 0 {
		t.Fatalf("invalid event hit the network %d times", calls.Load())
	}
}

func TestFilterScenario(t *testing.T) {
	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, []event.Event{
			{ID: "1", City: "Bogota", Date: "2025-03-01"},
			{ID: "2", City: "Cali", Date: "2025-03-02"},
		})
	}))
	ctx := context.Background()
	f.Refresh(ctx)

	f.SetCity("Bogota")
	filtered := f.FilteredEvents()
	if len(filtered) != 1 || filtered[0].ID != "1" {
		t.Fatalf("filtered = %+v, want only event 1", filtered)
	}
	counts := f.CityCounts()
	if counts["Bogota"] != 1 || counts["Cali"] != 1 {
		t.Fatalf("counts = %v", counts)
	}

	f.SetCity("Medellin")
	if got := f.FilteredEvents(); len(got) != 0 {
		t.Fatalf("absent city filter returned %+v", got)
	}
}

func TestEvents_DerivedFieldsStamped(t *testing.T) {
	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, []event.Event{
			{ID: "old", City: "Cali", Date: "2020-01-01"},
			{ID: "new", City: "Cali", Date: "2099-01-01"},
		})
	}))
	f.Clock = func() time.Time { return time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC) }
	f.Refresh(context.Background())

	events := f.Events()
	if events[0].Status != event.StatusPast || events[1].Status != event.StatusLive {
		t.Fatalf("statuses = %s / %s", events[0].Status, events[1].Status)
	}
	if events[0].DisplayDate == "" {
		t.Fatal("display date not stamped")
	}
}

func TestSubscribe_NotifiesOnChange(t *testing.T) {
	f, _, _ := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, []event.Event{{ID: "1", City: "Cali", Date: "2025-03-01"}})
	}))
	ch := f.Subscribe(8)
	f.Refresh(context.Background())

	sawReady := false
	for i := 0; i < 2; i++ {
		select {
		case c := <-ch:
			if c.State == StateReady {
				sawReady = true
			}
		case <-time.After(time.Second):
			t.Fatal("no change notification")
		}
	}
	if !sawReady {
		t.Fatal("subscriber never saw the ready state")
	}
}
