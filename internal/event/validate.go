package event

import (
	"fmt"
	"strings"
)

// requiredFields must be non-blank before an event is sent to the API.
var requiredFields = []string{"title", "city", "start"}

// Validate checks the fields the API rejects when blank, and that
// organizer names are unique. Returns one error per offending field.
func Validate(e Event) []error {
	var errs []error
	values := map[string]string{
		"title": e.Title,
		"city":  e.City,
		"start": e.Start,
	}
	for _, f := range requiredFields {
		if strings.TrimSpace(values[f]) == "" {
			errs = append(errs, fmt.Errorf("%s is required", f))
		}
	}
	seen := map[string]bool{}
	for _, o := range e.Organizers {
		if seen[o] {
			errs = append(errs, fmt.Errorf("duplicate organizer: %s", o))
			continue
		}
		seen[o] = true
	}
	return errs
}
