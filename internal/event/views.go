package event

// CityAll is the filter value that passes every event through.
const CityAll = "all"

// FilterByCity returns the events belonging to city. CityAll (or empty)
// returns the input slice unchanged.
func FilterByCity(events []Event, city string) []Event {
	if city == "" || city == CityAll {
		return events
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.City == city {
			out = append(out, e)
		}
	}
	return out
}

// CountByCity aggregates occurrence counts per city in a single pass.
// Events without a city are excluded from the map entirely rather than
// counted under a synthetic key; absent cities have no entry.
func CountByCity(events []Event) map[string]int {
	counts := map[string]int{}
	for _, e := range events {
		if e.City == "" {
			continue
		}
		counts[e.City]++
	}
	return counts
}
