package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tatd3v/ballroom-calendar-client/internal/output"
	"github.com/tatd3v/ballroom-calendar-client/internal/snapshot"
)

func cacheCmd(ctx Context, args []string) error {
	if len(args) == 0 {
		return errors.New("cache subcommand required: show|clear")
	}

	store, err := stateStore()
	if err != nil {
		return err
	}
	snap := &snapshot.Snapshot{Store: store}
	bg := context.Background()

	switch args[0] {
	case "show":
		events, ok, err := snap.Load(bg)
		if err != nil {
			return err
		}
		if !ok {
			return output.Write(os.Stdout, ctx.Output, map[string]any{"cached": false})
		}
		return output.WriteEvents(os.Stdout, ctx.Output, events)
	case "clear":
		if err := snap.Clear(bg); err != nil {
			return err
		}
		return output.Write(os.Stdout, ctx.Output, map[string]string{"status": "cleared"})
	default:
		return fmt.Errorf("unknown cache subcommand: %s", args[0])
	}
}
