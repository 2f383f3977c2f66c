// Package feed owns the canonical event collection: it issues paginated
// fetches, falls back to the offline snapshot, applies translations, and
// serves derived city views. It is the only writer of the collection;
// consumers get copies.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tatd3v/ballroom-calendar-client/internal/api"
	"github.com/tatd3v/ballroom-calendar-client/internal/event"
	"github.com/tatd3v/ballroom-calendar-client/internal/snapshot"
	"github.com/tatd3v/ballroom-calendar-client/internal/translate"
)

// DefaultLimit is the first-page size that fills a calendar view.
const DefaultLimit = 50

type Feed struct {
	API        *api.Client
	Snapshot   *snapshot.Snapshot
	Translator *translate.Translator // nil disables translation
	Logger     *zap.Logger
	Limit      int

	// Clock is overridable for status tests; nil means time.Now.
	Clock func() time.Time

	mu           sync.Mutex
	state        State
	events       []event.Event
	cities       []string
	cityColors   map[string]string
	selectedCity string
	lang         string
	page         int
	total        int
	hasMore      bool

	// latest is a monotonically increasing generation counter. Every
	// operation that commits asynchronously (fetch, append, translation)
	// records the generation issued at its start and commits only if no
	// newer operation has been issued since. Mutations bump it too, so
	// stale in-flight results can never overwrite confirmed state.
	latest uint64

	// loading is the generation of the fetch that currently owns a
	// loading state. A superseded fetch that still owns it must settle
	// the state on its way out; otherwise the supersessor will.
	loading uint64

	subs []chan Change
}

func New(client *api.Client, snap *snapshot.Snapshot, tr *translate.Translator, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		API:          client,
		Snapshot:     snap,
		Translator:   tr,
		Logger:       logger,
		Limit:        DefaultLimit,
		state:        StateIdle,
		selectedCity: event.CityAll,
		lang:         event.SourceLang,
		page:         1,
		hasMore:      true,
	}
}

func (f *Feed) clock() time.Time {
	if f.Clock != nil {
		return f.Clock()
	}
	return time.Now()
}

func (f *Feed) limit() int {
	if f.Limit > 0 {
		return f.Limit
	}
	return DefaultLimit
}

func (f *Feed) nextGenLocked() uint64 {
	f.latest++
	return f.latest
}

// Prime populates the collection from a fresh snapshot, if one exists,
// so the first paint does not wait for the network. State stays Idle; a
// Refresh is still expected.
func (f *Feed) Prime(ctx context.Context) {
	if f.Snapshot == nil {
		return
	}
	cached, ok, err := f.Snapshot.Load(ctx)
	if err != nil {
		f.Logger.Warn("snapshot load failed", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return
	}
	f.events = event.NormalizeAll(cached)
	f.notifyLocked(ReasonPrime)
}

// LoadCities fetches the city set and color palette once per session.
// Failures yield an empty list silently; city reads are never a hard
// error for the UI.
func (f *Feed) LoadCities(ctx context.Context) {
	res, err := f.API.GetCities(ctx)
	if err != nil {
		f.Logger.Warn("cities fetch failed", zap.Error(err))
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cities = res.Cities
	f.cityColors = res.Colors
	f.notifyLocked(ReasonCities)
}

// Refresh replaces the collection with a fresh first page. Read errors
// are terminal for the attempt only: the snapshot covers for them and
// nothing is returned to the caller.
func (f *Feed) Refresh(ctx context.Context) {
	f.fetchInitial(ctx, f.limit())
}

// Reset forces pagination back to page one and refetches, e.g. after an
// upstream change that invalidates the accumulated pages.
func (f *Feed) Reset(ctx context.Context) {
	f.mu.Lock()
	f.page = 1
	f.hasMore = true
	f.mu.Unlock()
	f.fetchInitial(ctx, f.limit())
}

func (f *Feed) fetchInitial(ctx context.Context, limit int) {
	f.mu.Lock()
	if f.state == StateLoadingInitial {
		f.mu.Unlock()
		return
	}
	f.state = StateLoadingInitial
	f.events = nil
	f.page = 1
	f.hasMore = true
	gen := f.nextGenLocked()
	f.loading = gen
	lang := f.lang
	f.notifyLocked(ReasonFetch)
	f.mu.Unlock()

	f.run(ctx, gen, 1, limit, false, lang)
}

// LoadMore fetches the next page and appends it. No-op while any fetch
// is in flight or when the server has no more pages: rapid double calls
// produce exactly one request. limit <= 0 uses the default.
func (f *Feed) LoadMore(ctx context.Context, limit int) {
	if limit <= 0 {
		limit = f.limit()
	}
	f.mu.Lock()
	// Guard, state transition and page increment stay in one critical
	// section so concurrent callers cannot double-increment the page.
	if f.state == StateLoadingMore || f.state == StateLoadingInitial || !f.hasMore {
		f.mu.Unlock()
		return
	}
	f.state = StateLoadingMore
	next := f.page + 1
	f.page = next
	gen := f.nextGenLocked()
	f.loading = gen
	lang := f.lang
	f.notifyLocked(ReasonLoadMore)
	f.mu.Unlock()

	f.run(ctx, gen, next, limit, true, lang)
}

func (f *Feed) run(ctx context.Context, gen uint64, page, limit int, appendPage bool, lang string) {
	res, err := f.API.ListEvents(ctx, api.ListOptions{Lang: lang, Page: page, Limit: limit})

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.latest {
		f.Logger.Debug("stale fetch discarded", zap.Int("page", page), zap.Bool("append", appendPage))
		if f.loading == gen {
			// Superseded by a non-fetch operation (language switch or
			// mutation) that left our loading state behind; settle it so
			// later fetches are not blocked by the guard.
			f.settleSupersededLocked()
		}
		return
	}

	if err != nil {
		f.settleFailureLocked(ctx, appendPage, err)
		return
	}

	normalized := event.NormalizeAll(res.Events)
	if appendPage {
		f.events = append(f.events, normalized...)
	} else {
		f.events = normalized
	}

	if res.Pagination != nil {
		f.hasMore = res.Pagination.HasMore
		f.total = res.Pagination.Total
		f.page = res.Pagination.Page
	} else {
		// Legacy non-paginated responses carry no metadata; mirror the
		// deployed client's inference.
		f.hasMore = len(normalized) < limit
		f.total = len(normalized)
		f.page = page
	}

	// Only the first page is ever cached; Save clears the snapshot when
	// the result set is empty.
	if !appendPage && f.Snapshot != nil {
		if err := f.Snapshot.Save(ctx, normalized); err != nil {
			f.Logger.Warn("snapshot save failed", zap.Error(err))
		}
	}

	f.state = StateReady
	reason := ReasonFetch
	if appendPage {
		reason = ReasonLoadMore
	}
	f.notifyLocked(reason)
	f.maybeTranslateLocked(ctx)
}

func (f *Feed) settleSupersededLocked() {
	if len(f.events) > 0 {
		f.state = StateReady
	} else {
		f.state = StateIdle
	}
	f.notifyLocked(ReasonFetch)
}

func (f *Feed) settleFailureLocked(ctx context.Context, appendPage bool, cause error) {
	if appendPage {
		// Keep the accumulated pages; the page counter rolls back so the
		// same page can be retried.
		if f.page > 1 {
			f.page--
		}
		f.state = StateReady
		f.Logger.Warn("load more failed", zap.Error(cause))
		f.notifyLocked(ReasonLoadMore)
		return
	}

	f.Logger.Warn("events fetch failed, checking snapshot", zap.Error(cause))
	if f.Snapshot != nil {
		if cached, ok, err := f.Snapshot.Load(ctx); err == nil && ok {
			// The snapshot is a finite offline slice; there is nothing
			// more to page through.
			f.events = event.NormalizeAll(cached)
			f.hasMore = false
			f.state = StateReady
			f.notifyLocked(ReasonFetch)
			f.maybeTranslateLocked(ctx)
			return
		}
	}
	f.state = StateFailed
	f.notifyLocked(ReasonFetch)
}

// maybeTranslateLocked kicks off an asynchronous translation run over a
// copy of the current collection. The run commits only if it is still
// the newest issued operation when it completes.
func (f *Feed) maybeTranslateLocked(ctx context.Context) {
	if f.Translator == nil || f.lang == event.SourceLang || len(f.events) == 0 {
		return
	}
	gen := f.nextGenLocked()
	lang := f.lang
	evs := make([]event.Event, len(f.events))
	copy(evs, f.events)

	// The run outlives the caller: a canceled request context must not
	// abort translations that commit after the handler returns.
	ctx = context.WithoutCancel(ctx)

	go func() {
		translated := f.Translator.TranslateEvents(ctx, evs, event.SourceLang, lang)
		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.latest {
			f.Logger.Debug("stale translation discarded", zap.String("lang", lang))
			return
		}
		f.events = translated
		f.notifyLocked(ReasonTranslation)
	}()
}

// SetLanguage switches the display language. Returning to the source
// language restores the preserved originals without a network trip; any
// other language triggers a translation pass over the collection.
func (f *Feed) SetLanguage(ctx context.Context, lang string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lang == "" || lang == f.lang {
		return
	}
	f.lang = lang
	f.nextGenLocked() // supersede in-flight fetches and translations
	if lang == event.SourceLang {
		f.events = translate.RestoreOriginals(f.events)
		f.notifyLocked(ReasonLanguage)
		return
	}
	f.notifyLocked(ReasonLanguage)
	f.maybeTranslateLocked(ctx)
}

// SetCity changes the client-side city filter. Filtering never refetches:
// it is a pure view over the already-fetched pages.
func (f *Feed) SetCity(city string) {
	if city == "" {
		city = event.CityAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if city == f.selectedCity {
		return
	}
	f.selectedCity = city
	f.notifyLocked(ReasonFilter)
}

// Subscribe returns a channel receiving a Change whenever the feed
// moves. Slow subscribers drop changes rather than block the feed.
func (f *Feed) Subscribe(buf int) <-chan Change {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Change, buf)
	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.mu.Unlock()
	return ch
}

func (f *Feed) notifyLocked(reason string) {
	c := Change{Reason: reason, State: f.state}
	for _, ch := range f.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// --- derived views ---

// decorate stamps the read-time derived fields on a copy.
func (f *Feed) decorate(events []event.Event) []event.Event {
	now := f.clock()
	out := make([]event.Event, len(events))
	copy(out, events)
	for i := range out {
		out[i].Status = out[i].StatusAt(now)
		out[i].DisplayDate = event.FormatDisplayDate(out[i].Date, f.lang)
	}
	return out
}

// Events returns the full canonical collection with derived display
// fields applied.
func (f *Feed) Events() []event.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decorate(f.events)
}

// FilteredEvents returns the collection filtered by the selected city.
func (f *Feed) FilteredEvents() []event.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decorate(event.FilterByCity(f.events, f.selectedCity))
}

// CityCounts aggregates event counts per city over the full collection.
func (f *Feed) CityCounts() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return event.CountByCity(f.events)
}

// Cities returns the known city set; CityOptions pairs it with colors
// and counts.
func (f *Feed) Cities() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cities...)
}

func (f *Feed) CityOptions() []event.CityOption {
	f.mu.Lock()
	defer f.mu.Unlock()
	return event.BuildCityOptions(f.cities, f.cityColors, event.CountByCity(f.events))
}

func (f *Feed) CityColors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.cityColors))
	for k, v := range f.cityColors {
		out[k] = v
	}
	return out
}

func (f *Feed) SelectedCity() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selectedCity
}

func (f *Feed) Language() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lang
}

func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

func (f *Feed) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

func (f *Feed) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// mergePatch overlays the fields present in the server response onto the
// local record: local wins for absent fields, server wins for present
// ones.
func mergePatch(local event.Event, patch map[string]any) event.Event {
	b, err := json.Marshal(patch)
	if err != nil {
		return local
	}
	merged := local
	if err := json.Unmarshal(b, &merged); err != nil {
		return local
	}
	return merged
}
