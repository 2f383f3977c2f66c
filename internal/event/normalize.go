package event

// Normalize maps a raw API record into canonical shape: date falls back
// to start, start falls back to the computed date, end stays nil when
// absent. Total over any input; all other fields pass through unchanged.
func Normalize(e Event) Event {
	date := e.Date
	if date == "" {
		date = e.Start
	}
	e.Date = date
	if e.Start == "" {
		e.Start = date
	}
	return e
}

// NormalizeAll normalizes a slice in place and returns it.
func NormalizeAll(events []Event) []Event {
	for i := range events {
		events[i] = Normalize(events[i])
	}
	return events
}
