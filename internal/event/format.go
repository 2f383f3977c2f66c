package event

import (
	"fmt"
	"strings"
	"time"
)

var monthsEN = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
var monthsES = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

// FormatDisplayDate renders a YYYY-MM-DD date for the given language
// ("es" gets day-first Spanish month abbreviations, anything else the
// en-US short form). Unparseable dates get the announce placeholder.
func FormatDisplayDate(date, lang string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		if strings.HasPrefix(lang, "es") {
			return "Fecha por anunciar"
		}
		return "Date to be announced"
	}
	if strings.HasPrefix(lang, "es") {
		return fmt.Sprintf("%d %s %d", d.Day(), monthsES[d.Month()-1], d.Year())
	}
	return fmt.Sprintf("%s %d, %d", monthsEN[d.Month()-1], d.Day(), d.Year())
}

// FormatTime renders an HH:MM or HH:MM:SS venue-local time with a
// 12-hour clock and meridiem. Empty or malformed times fall back to the
// all-day label.
func FormatTime(t, fallback string) string {
	if len(t) == 5 {
		t += ":00"
	}
	parsed, err := time.Parse("15:04:05", t)
	if err != nil {
		return fallback
	}
	h := parsed.Hour()
	display := (h+11)%12 + 1
	meridiem := "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", display, parsed.Minute(), meridiem)
}
