package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tatd3v/ballroom-calendar-client/internal/event"
	"github.com/tatd3v/ballroom-calendar-client/internal/output"
)

func citiesCmd(ctx Context, args []string) error {
	if len(args) > 0 && args[0] != "list" {
		return fmt.Errorf("unknown cities subcommand: %s", args[0])
	}
	res, err := ctx.client().GetCities(context.Background())
	if err != nil {
		return err
	}
	options := event.BuildCityOptions(res.Cities, res.Colors, nil)
	return output.Write(os.Stdout, ctx.Output, options)
}

func uploadCmd(ctx Context, args []string) error {
	if len(args) == 0 || args[0] != "image" {
		return errors.New("usage: ballroom upload image <path>")
	}
	if len(args) < 2 {
		return errors.New("usage: ballroom upload image <path>")
	}
	path := args[1]

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	resp, err := ctx.client().UploadImage(context.Background(), path, f)
	if err != nil {
		return err
	}
	return output.Write(os.Stdout, ctx.Output, resp)
}
