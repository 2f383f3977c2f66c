package translate

import (
	"context"
	"sync"

	"github.com/tatd3v/ballroom-calendar-client/internal/event"
)

// TranslateEvents returns a copy of events with title and description
// rendered in targetLang. Matching languages or an empty list pass
// through untouched. The first translation pass stamps the original
// values so a later switch back to the source language is lossless.
//
// Events are translated concurrently, at most Workers at a time.
func (t *Translator) TranslateEvents(ctx context.Context, events []event.Event, sourceLang, targetLang string) []event.Event {
	if len(events) == 0 || sourceLang == targetLang {
		return events
	}

	out := make([]event.Event, len(events))
	copy(out, events)

	sem := make(chan struct{}, t.workers())
	var wg sync.WaitGroup
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			e := out[i]
			title := e.Title
			desc := e.Description
			e.Title = t.Translate(ctx, title, sourceLang, targetLang)
			if desc != "" {
				e.Description = t.Translate(ctx, desc, sourceLang, targetLang)
			}
			if e.OriginalTitle == "" {
				e.OriginalTitle = title
			}
			if e.OriginalDescription == "" {
				e.OriginalDescription = desc
			}
			out[i] = e
		}(i)
	}
	wg.Wait()
	return out
}

// RestoreOriginals reverts translated display strings to the authored
// text for events that carry preserved originals.
func RestoreOriginals(events []event.Event) []event.Event {
	out := make([]event.Event, len(events))
	copy(out, events)
	for i := range out {
		if out[i].OriginalTitle != "" {
			out[i].Title = out[i].OriginalTitle
		}
		if out[i].OriginalDescription != "" {
			out[i].Description = out[i].OriginalDescription
		}
	}
	return out
}
