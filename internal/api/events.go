package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tatd3v/ballroom-calendar-client/internal/event"
)

// Pagination metadata the server attaches to enveloped list responses.
// Older deployments return a bare array instead; callers infer paging
// from the returned count in that case.
type Pagination struct {
	HasMore bool `json:"hasMore"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
}

type ListOptions struct {
	City  string
	Lang  string
	Page  int
	Limit int
}

type ListResult struct {
	Events     []event.Event
	Pagination *Pagination
}

// ListEvents fetches one page. The response is either a bare event array
// or {events: [...], pagination: {...}}; both are accepted.
func (c *Client) ListEvents(ctx context.Context, opts ListOptions) (ListResult, error) {
	q := url.Values{}
	if opts.City != "" && opts.City != event.CityAll {
		q.Set("city", opts.City)
	}
	if opts.Lang != "" {
		q.Set("lang", opts.Lang)
	}
	if opts.Page > 0 {
		q.Set("page", fmt.Sprint(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprint(opts.Limit))
	}
	path := "/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	req, err := c.NewRequest(ctx, "GET", path, nil)
	if err != nil {
		return ListResult{}, err
	}
	var raw json.RawMessage
	if err := c.Do(req, &raw); err != nil {
		return ListResult{}, err
	}
	return decodeList(raw)
}

func decodeList(raw json.RawMessage) (ListResult, error) {
	var events []event.Event
	if err := json.Unmarshal(raw, &events); err == nil {
		return ListResult{Events: events}, nil
	}
	var envelope struct {
		Events     []event.Event `json:"events"`
		Pagination *Pagination   `json:"pagination"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ListResult{}, fmt.Errorf("decode events response: %w", err)
	}
	return ListResult{Events: envelope.Events, Pagination: envelope.Pagination}, nil
}

// GetEvent fetches a single event by id.
func (c *Client) GetEvent(ctx context.Context, id, lang string) (event.Event, error) {
	path := "/events/" + url.PathEscape(id)
	if lang != "" {
		path += "?lang=" + url.QueryEscape(lang)
	}
	req, err := c.NewRequest(ctx, "GET", path, nil)
	if err != nil {
		return event.Event{}, err
	}
	var e event.Event
	if err := c.Do(req, &e); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

// Cities is the city metadata collaborator payload: the known city set
// and its display color palette, immutable for the session once loaded.
type Cities struct {
	Cities []string          `json:"cities"`
	Colors map[string]string `json:"colors"`
}

func (c *Client) GetCities(ctx context.Context) (Cities, error) {
	req, err := c.NewRequest(ctx, "GET", "/events/cities", nil)
	if err != nil {
		return Cities{}, err
	}
	var out Cities
	if err := c.Do(req, &out); err != nil {
		return Cities{}, err
	}
	return out, nil
}

func (c *Client) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	req, err := c.NewRequest(ctx, "POST", "/events", e)
	if err != nil {
		return event.Event{}, err
	}
	var created event.Event
	if err := c.Do(req, &created); err != nil {
		return event.Event{}, err
	}
	return created, nil
}

// UpdateEvent sends the patch and returns the fields the server echoed
// back. The server may return a partial record; merging is the caller's
// concern.
func (c *Client) UpdateEvent(ctx context.Context, id string, patch map[string]any) (map[string]any, error) {
	req, err := c.NewRequest(ctx, "PUT", "/events/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}
	var updated map[string]any
	if err := c.Do(req, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	req, err := c.NewRequest(ctx, "DELETE", "/events/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.Do(req, nil)
}
