// Package translate rewrites event display strings into the viewer's
// language. Results are memoized in memory and in the persistent store;
// any provider failure falls back to the original text, never an error.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tatd3v/ballroom-calendar-client/internal/cache"
)

const (
	storeKey = "event_translations"

	// CacheTTL is how long a persisted translation stays valid.
	CacheTTL = 24 * time.Hour

	// DefaultBaseURL is the MyMemory-compatible endpoint.
	DefaultBaseURL = "https://api.mymemory.translated.net"

	// DefaultWorkers bounds the event fan-out so the provider's rate
	// limits are respected.
	DefaultWorkers = 4
)

type storedEntry struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type Translator struct {
	BaseURL string
	HTTP    *http.Client
	Store   cache.Store // optional persistent cache
	Logger  *zap.Logger
	Workers int

	// Now is overridable for expiry tests; nil means time.Now.
	Now func() time.Time

	mu        sync.Mutex
	mem       map[string]string
	persisted map[string]storedEntry
	loaded    bool
}

func (t *Translator) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Translator) httpClient() *http.Client {
	if t.HTTP != nil {
		return t.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (t *Translator) baseURL() string {
	if t.BaseURL != "" {
		return t.BaseURL
	}
	return DefaultBaseURL
}

func (t *Translator) workers() int {
	if t.Workers > 0 {
		return t.Workers
	}
	return DefaultWorkers
}

func cacheKey(text, sourceLang, targetLang string) string {
	return sourceLang + "|" + targetLang + "|" + text
}

// Translate returns text rendered in targetLang, or text unchanged when
// it is empty, the languages match, or the provider fails.
func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string) string {
	if strings.TrimSpace(text) == "" || sourceLang == targetLang {
		return text
	}

	key := cacheKey(text, sourceLang, targetLang)
	if cached, ok := t.lookup(ctx, key); ok {
		return cached
	}

	translated, err := t.fetch(ctx, text, sourceLang, targetLang)
	if err != nil {
		if t.Logger != nil {
			t.Logger.Debug("translation failed, keeping original",
				zap.String("lang_pair", sourceLang+"|"+targetLang), zap.Error(err))
		}
		return text
	}
	translated = fixCasing(translated, text)
	t.remember(ctx, key, translated)
	return translated
}

// lookup checks the in-memory map, then the persistent store. Persistent
// hits are promoted into memory.
func (t *Translator) lookup(ctx context.Context, key string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mem == nil {
		t.mem = map[string]string{}
	}
	if v, ok := t.mem[key]; ok {
		return v, true
	}
	t.loadPersistedLocked(ctx)
	if e, ok := t.persisted[key]; ok {
		t.mem[key] = e.Text
		return e.Text, true
	}
	return "", false
}

// loadPersistedLocked reads the stored blob once per process, pruning
// entries past CacheTTL. Corrupt blobs count as empty.
func (t *Translator) loadPersistedLocked(ctx context.Context) {
	if t.loaded {
		return
	}
	t.loaded = true
	t.persisted = map[string]storedEntry{}
	if t.Store == nil {
		return
	}
	b, ok, err := t.Store.Get(ctx, storeKey)
	if err != nil || !ok {
		return
	}
	var all map[string]storedEntry
	if err := json.Unmarshal(b, &all); err != nil {
		return
	}
	cutoff := t.now().UnixMilli() - CacheTTL.Milliseconds()
	for k, e := range all {
		if e.Timestamp > cutoff {
			t.persisted[k] = e
		}
	}
}

func (t *Translator) remember(ctx context.Context, key, translated string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mem == nil {
		t.mem = map[string]string{}
	}
	t.mem[key] = translated
	t.loadPersistedLocked(ctx)
	t.persisted[key] = storedEntry{Text: translated, Timestamp: t.now().UnixMilli()}
	if t.Store == nil {
		return
	}
	b, err := json.Marshal(t.persisted)
	if err != nil {
		return
	}
	if err := t.Store.Set(ctx, storeKey, b, 0); err != nil {
		// Store full or unavailable: drop the persisted layer and keep
		// going on the in-memory cache.
		_ = t.Store.Delete(ctx, storeKey)
	}
}

type providerResponse struct {
	ResponseStatus int `json:"responseStatus"`
	ResponseData   struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

func (t *Translator) fetch(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", sourceLang+"|"+targetLang)
	reqURL := strings.TrimRight(t.baseURL(), "/") + "/get?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation api status %d", resp.StatusCode)
	}
	var out providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ResponseStatus != http.StatusOK || out.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("translation api response status %d", out.ResponseStatus)
	}
	return out.ResponseData.TranslatedText, nil
}

// fixCasing undoes the provider's habit of returning short strings in
// all caps: when the source was not all-uppercase, the result is folded
// to sentence case.
func fixCasing(translated, source string) string {
	if translated != strings.ToUpper(translated) || source == strings.ToUpper(source) {
		return translated
	}
	lower := strings.ToLower(translated)
	r, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(r)) + lower[size:]
}
