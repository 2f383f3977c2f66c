// Package server exposes the synced feed over a small local HTTP facade:
// read-side views plus refresh and preference switches. Mutations go
// through the CLI against the upstream API directly.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tatd3v/ballroom-calendar-client/internal/event"
	"github.com/tatd3v/ballroom-calendar-client/internal/feed"
)

type FeedHandler struct {
	Feed   *feed.Feed
	Logger *zap.Logger
}

func (h *FeedHandler) Register(e *gin.Engine) {
	v1 := e.Group("/api/v1")
	v1.GET("/events", h.listEvents)
	v1.GET("/events/cities", h.listCities)
	v1.GET("/events/slug/:slug", h.getBySlug)
	v1.GET("/status", h.status)
	v1.POST("/refresh", h.refresh)
	v1.POST("/load-more", h.loadMore)
	v1.POST("/city", h.setCity)
	v1.POST("/language", h.setLanguage)
}

// listEvents serves the derived view. An explicit ?city= filters without
// touching the sticky selection; otherwise the selected city applies.
func (h *FeedHandler) listEvents(c *gin.Context) {
	var events []event.Event
	if city := c.Query("city"); city != "" {
		events = event.FilterByCity(h.Feed.Events(), city)
	} else {
		events = h.Feed.FilteredEvents()
	}
	ok(c, events, map[string]any{
		"total":    h.Feed.Total(),
		"page":     h.Feed.Page(),
		"hasMore":  h.Feed.HasMore(),
		"state":    h.Feed.State(),
		"selected": h.Feed.SelectedCity(),
	})
}

func (h *FeedHandler) listCities(c *gin.Context) {
	ok(c, gin.H{
		"cities":  h.Feed.Cities(),
		"colors":  h.Feed.CityColors(),
		"options": h.Feed.CityOptions(),
	}, nil)
}

func (h *FeedHandler) getBySlug(c *gin.Context) {
	e, found := event.FindBySlug(h.Feed.Events(), c.Param("slug"))
	if !found {
		fail(c, http.StatusNotFound, "event not found")
		return
	}
	ok(c, e, nil)
}

func (h *FeedHandler) status(c *gin.Context) {
	ok(c, gin.H{
		"state":    h.Feed.State(),
		"page":     h.Feed.Page(),
		"total":    h.Feed.Total(),
		"hasMore":  h.Feed.HasMore(),
		"language": h.Feed.Language(),
		"selected": h.Feed.SelectedCity(),
		"counts":   h.Feed.CityCounts(),
	}, nil)
}

func (h *FeedHandler) refresh(c *gin.Context) {
	h.Feed.Refresh(c.Request.Context())
	ok(c, gin.H{"state": h.Feed.State()}, nil)
}

func (h *FeedHandler) loadMore(c *gin.Context) {
	var body struct {
		Limit int `json:"limit"`
	}
	_ = c.ShouldBindJSON(&body)
	h.Feed.LoadMore(c.Request.Context(), body.Limit)
	ok(c, gin.H{"state": h.Feed.State(), "page": h.Feed.Page()}, nil)
}

func (h *FeedHandler) setCity(c *gin.Context) {
	var body struct {
		City string `json:"city"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "city is required")
		return
	}
	h.Feed.SetCity(body.City)
	ok(c, gin.H{"selected": h.Feed.SelectedCity()}, nil)
}

func (h *FeedHandler) setLanguage(c *gin.Context) {
	var body struct {
		Lang string `json:"lang"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Lang == "" {
		fail(c, http.StatusBadRequest, "lang is required")
		return
	}
	h.Feed.SetLanguage(c.Request.Context(), body.Lang)
	ok(c, gin.H{"language": h.Feed.Language()}, nil)
}
