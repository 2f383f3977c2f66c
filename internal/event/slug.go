package event

import (
	"regexp"
	"strings"
)

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugStrip   = regexp.MustCompile(`[^\w-]+`)
	slugHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a title into a URL-friendly slug.
func Slugify(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	if s == "" {
		return ""
	}
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FindBySlug returns the first event whose slugified title matches.
func FindBySlug(events []Event, slug string) (Event, bool) {
	if slug == "" {
		return Event{}, false
	}
	for _, e := range events {
		if Slugify(e.Title) == slug {
			return e, true
		}
	}
	return Event{}, false
}
