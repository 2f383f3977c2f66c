package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tatd3v/ballroom-calendar-client/internal/event"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Write renders an arbitrary payload. Text and markdown fall back to
// indented JSON for payloads without a dedicated renderer.
func Write(w io.Writer, format Format, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteEvents renders an event list in the requested format.
func WriteEvents(w io.Writer, format Format, events []event.Event) error {
	switch format {
	case FormatText:
		for _, e := range events {
			t := event.FormatTime(e.Time, "all day")
			fmt.Fprintf(w, "%-12s %-9s %-14s %s  [%s]\n", e.Date, t, e.City, e.Title, e.ID)
		}
		return nil
	case FormatMarkdown:
		fmt.Fprintln(w, "| Date | Time | City | Title | Status |")
		fmt.Fprintln(w, "|---|---|---|---|---|")
		for _, e := range events {
			title := strings.ReplaceAll(e.Title, "|", "\\|")
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				e.Date, event.FormatTime(e.Time, "all day"), e.City, title, e.Status)
		}
		return nil
	default:
		return Write(w, format, events)
	}
}
