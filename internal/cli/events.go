package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tatd3v/ballroom-calendar-client/internal/api"
	"github.com/tatd3v/ballroom-calendar-client/internal/cache"
	"github.com/tatd3v/ballroom-calendar-client/internal/event"
	"github.com/tatd3v/ballroom-calendar-client/internal/output"
	"github.com/tatd3v/ballroom-calendar-client/internal/snapshot"
	"github.com/tatd3v/ballroom-calendar-client/internal/translate"
)

func (c Context) client() *api.Client {
	return &api.Client{BaseURL: c.APIBase, Token: c.Token}
}

// stateStore opens the shared offline store under the state dir.
func stateStore() (cache.Store, error) {
	p, err := StatePath()
	if err != nil {
		return nil, err
	}
	return cache.NewFileStore(p)
}

func eventsCmd(ctx Context, args []string) error {
	if len(args) == 0 {
		return errors.New("events subcommand required: list|get|create|update|delete")
	}
	switch args[0] {
	case "list":
		return eventsList(ctx, args[1:])
	case "get":
		return eventsGet(ctx, args[1:])
	case "create":
		return eventsCreate(ctx, args[1:])
	case "update":
		return eventsUpdate(ctx, args[1:])
	case "delete":
		return eventsDelete(ctx, args[1:])
	default:
		return fmt.Errorf("unknown events subcommand: %s", args[0])
	}
}

// eventsList fetches a page, keeps the offline snapshot warm, and falls
// back to it when the API is unreachable. Only the unfiltered first page
// is ever cached.
func eventsList(ctx Context, args []string) error {
	fs := flag.NewFlagSet("ballroom events list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	city := fs.String("city", event.CityAll, "Filter by city")
	page := fs.Int("page", 1, "Page number")
	limit := fs.Int("limit", 50, "Page size")
	_ = fs.Parse(args)

	store, err := stateStore()
	if err != nil {
		return err
	}
	snap := &snapshot.Snapshot{Store: store}

	bg := context.Background()
	c := ctx.client()
	res, err := c.ListEvents(bg, api.ListOptions{
		City: *city, Lang: ctx.Lang, Page: *page, Limit: *limit,
	})
	var events []event.Event
	if err != nil {
		cached, ok, loadErr := snap.Load(bg)
		if loadErr != nil || !ok {
			return err
		}
		fmt.Fprintln(os.Stderr, "api unreachable, showing cached events")
		events = event.FilterByCity(event.NormalizeAll(cached), *city)
	} else {
		events = event.NormalizeAll(res.Events)
		if *page == 1 && (*city == "" || *city == event.CityAll) {
			_ = snap.Save(bg, events)
		}
	}

	if ctx.Lang != event.SourceLang {
		tr := &translate.Translator{Store: store}
		events = tr.TranslateEvents(bg, events, event.SourceLang, ctx.Lang)
	}
	return output.WriteEvents(os.Stdout, ctx.Output, events)
}

func eventsGet(ctx Context, args []string) error {
	fs := flag.NewFlagSet("ballroom events get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "Event id")
	_ = fs.Parse(args)
	if strings.TrimSpace(*id) == "" {
		return errors.New("usage: ballroom events get --id <id>")
	}
	e, err := ctx.client().GetEvent(context.Background(), *id, ctx.Lang)
	if err != nil {
		return err
	}
	return output.Write(os.Stdout, ctx.Output, event.Normalize(e))
}

func eventsCreate(ctx Context, args []string) error {
	fs := flag.NewFlagSet("ballroom events create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	e := bindEventFlags(fs)
	organizers := fs.String("organizers", "", "Comma-separated organizer names")
	_ = fs.Parse(args)

	if *organizers != "" {
		for _, o := range strings.Split(*organizers, ",") {
			if o = strings.TrimSpace(o); o != "" {
				e.Organizers = append(e.Organizers, o)
			}
		}
	}
	*e = event.Normalize(*e)
	if errs := event.Validate(*e); len(errs) > 0 {
		return errors.Join(errs...)
	}

	created, err := ctx.client().CreateEvent(context.Background(), *e)
	if err != nil {
		return err
	}
	return output.Write(os.Stdout, ctx.Output, event.Normalize(created))
}

func eventsUpdate(ctx Context, args []string) error {
	fs := flag.NewFlagSet("ballroom events update", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "Event id")
	e := bindEventFlags(fs)
	_ = fs.Parse(args)
	if strings.TrimSpace(*id) == "" {
		return errors.New("usage: ballroom events update --id <id> [field flags]")
	}

	// Only explicitly set flags become part of the patch.
	patch := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch["title"] = e.Title
		case "city":
			patch["city"] = e.City
		case "date", "start":
			patch["date"] = e.Date
			patch["start"] = e.Start
		case "end":
			patch["end"] = e.End
		case "time":
			patch["time"] = e.Time
		case "location":
			patch["location"] = e.Location
		case "description":
			patch["description"] = e.Description
		case "image-url":
			patch["imageUrl"] = e.ImageURL
		}
	})
	if len(patch) == 0 {
		return errors.New("nothing to update")
	}

	updated, err := ctx.client().UpdateEvent(context.Background(), *id, patch)
	if err != nil {
		return err
	}
	return output.Write(os.Stdout, ctx.Output, updated)
}

func eventsDelete(ctx Context, args []string) error {
	fs := flag.NewFlagSet("ballroom events delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "Event id")
	_ = fs.Parse(args)
	if strings.TrimSpace(*id) == "" {
		return errors.New("usage: ballroom events delete --id <id>")
	}
	if err := ctx.client().DeleteEvent(context.Background(), *id); err != nil {
		return err
	}
	return output.Write(os.Stdout, ctx.Output, map[string]string{"deleted": *id})
}

// bindEventFlags registers the shared event field flags and returns the
// record they populate. date and start are aliases on the wire; the
// normalizer reconciles whichever was set.
func bindEventFlags(fs *flag.FlagSet) *event.Event {
	e := &event.Event{}
	fs.StringVar(&e.Title, "title", "", "Event title")
	fs.StringVar(&e.City, "city", "", "Event city")
	fs.StringVar(&e.Date, "date", "", "Calendar date (YYYY-MM-DD)")
	fs.StringVar(&e.Start, "start", "", "Start date (YYYY-MM-DD)")
	fs.Func("end", "End date (YYYY-MM-DD)", func(v string) error {
		e.End = &v
		return nil
	})
	fs.StringVar(&e.Time, "time", "", "Venue-local time (HH:MM)")
	fs.StringVar(&e.Location, "location", "", "Venue")
	fs.StringVar(&e.Description, "description", "", "Description")
	fs.StringVar(&e.ImageURL, "image-url", "", "Image URL")
	return e
}
