package feed

// State is the feed's fetch lifecycle. A tagged state replaces the
// loading/loadingMore boolean pair so invalid combinations cannot be
// represented.
type State string

const (
	// StateIdle: created, nothing fetched yet (a primed snapshot may
	// already be visible).
	StateIdle State = "idle"
	// StateLoadingInitial: a full (non-append) fetch is in flight.
	StateLoadingInitial State = "loading"
	// StateLoadingMore: an append fetch is in flight behind an intact
	// collection.
	StateLoadingMore State = "loading_more"
	// StateReady: last fetch settled and the collection is renderable.
	StateReady State = "ready"
	// StateFailed: initial fetch failed with no usable snapshot.
	StateFailed State = "failed"
)

// Change is pushed to subscribers whenever the visible collection or
// lifecycle state moves.
type Change struct {
	Reason string `json:"reason"`
	State  State  `json:"state"`
}

const (
	ReasonPrime       = "prime"
	ReasonFetch       = "fetch"
	ReasonLoadMore    = "load_more"
	ReasonMutation    = "mutation"
	ReasonTranslation = "translation"
	ReasonFilter      = "filter"
	ReasonLanguage    = "language"
	ReasonCities      = "cities"
)
