package feed

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/tatd3v/ballroom-calendar-client/internal/event"
)

// Mutations wait for server confirmation before touching local state:
// consistency with the server's source of truth over responsiveness.
// Write errors propagate to the caller unchanged.

// Add creates the event on the server and appends the confirmed record
// to the end of the collection.
func (f *Feed) Add(ctx context.Context, e event.Event) (event.Event, error) {
	if errs := event.Validate(e); len(errs) > 0 {
		return event.Event{}, errors.Join(errs...)
	}
	created, err := f.API.CreateEvent(ctx, e)
	if err != nil {
		return event.Event{}, err
	}
	created = event.Normalize(created)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, created)
	f.nextGenLocked()
	f.notifyLocked(ReasonMutation)
	return created, nil
}

// Update patches the event on the server, then merges the returned
// fields over the local record and re-normalizes. Unknown ids are a
// local no-op after a successful server call.
func (f *Feed) Update(ctx context.Context, id string, patch map[string]any) error {
	updated, err := f.API.UpdateEvent(ctx, id, patch)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID != id {
			continue
		}
		f.events[i] = event.Normalize(mergePatch(f.events[i], updated))
		f.nextGenLocked()
		f.notifyLocked(ReasonMutation)
		return nil
	}
	f.Logger.Debug("updated event not in local collection", zap.String("id", id))
	return nil
}

// Delete removes the event on the server, then drops the local record.
func (f *Feed) Delete(ctx context.Context, id string) error {
	if err := f.API.DeleteEvent(ctx, id); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.events[:0]
	for _, e := range f.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	f.events = kept
	f.nextGenLocked()
	f.notifyLocked(ReasonMutation)
	return nil
}
