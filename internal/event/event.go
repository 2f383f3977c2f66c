package event

import "time"

// Status of an event relative to the wall clock. Derived at read time,
// never persisted.
type Status string

const (
	StatusLive Status = "live"
	StatusPast Status = "past"
)

// SourceLang is the language event content is authored in before
// optional translation.
const SourceLang = "es"

// DateLayout is the calendar-date wire format (no timezone).
const DateLayout = "2006-01-02"

// Event is the canonical event record. Date and Start are kept equal
// after Normalize; the API may populate either one.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	City        string   `json:"city"`
	Date        string   `json:"date"`
	Start       string   `json:"start"`
	End         *string  `json:"end"`
	Time        string   `json:"time,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Organizers  []string `json:"organizers,omitempty"`

	// Derived fields, populated by the feed for display.
	Status      Status `json:"status,omitempty"`
	DisplayDate string `json:"displayDate,omitempty"`

	// Pre-translation values, set the first time a translation is
	// applied and never overwritten, so switching back to the source
	// language restores the authored text losslessly.
	OriginalTitle       string `json:"_originalTitle,omitempty"`
	OriginalDescription string `json:"_originalDescription,omitempty"`
}

// StatusAt reports whether the event is upcoming or already over at the
// given instant. Events without a parseable date count as live (date to
// be announced).
func (e Event) StatusAt(now time.Time) Status {
	d, err := time.ParseInLocation(DateLayout, e.Date, now.Location())
	if err != nil {
		return StatusLive
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return StatusPast
	}
	return StatusLive
}
