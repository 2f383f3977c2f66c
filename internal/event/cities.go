package event

// DefaultCityColor is the badge color used for cities without a palette
// entry.
const DefaultCityColor = "#EE0087"

// CityColor looks up the display color for a city, falling back to the
// default when the city is unknown or blank.
func CityColor(city string, palette map[string]string) string {
	if city == "" {
		return DefaultCityColor
	}
	if c, ok := palette[city]; ok && c != "" {
		return c
	}
	return DefaultCityColor
}

// CityOption is a city with its display color and event count, the shape
// list consumers render as filter chips.
type CityOption struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// BuildCityOptions pairs each known city with its color and count.
func BuildCityOptions(cities []string, palette map[string]string, counts map[string]int) []CityOption {
	out := make([]CityOption, 0, len(cities))
	for _, c := range cities {
		out = append(out, CityOption{
			Name:  c,
			Color: CityColor(c, palette),
			Count: counts[c],
		})
	}
	return out
}
