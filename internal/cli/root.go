// Package cli implements the ballroom command surface: auth, event CRUD,
// image upload, city metadata and offline-cache inspection.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tatd3v/ballroom-calendar-client/internal/output"
)

type Context struct {
	APIBase string
	Token   string
	Lang    string
	Output  output.Format
}

func Usage(w io.Writer) {
	fmt.Fprint(w, `ballroom <command> <subcommand> [flags]

Global Flags:
  --api-base    Calendar API base URL (env: BALLROOM_API_BASE)
  --token       Bearer token (env: BALLROOM_TOKEN)
  --lang        Display language, es|en (env: BALLROOM_LANG)
  --output      json|text|markdown (default json)

Commands:
  auth     login/logout/status
  events   list/get/create/update/delete
  cities   list
  upload   image
  cache    show/clear
`)
}

func Dispatch(ctx Context, args []string) error {
	if len(args) == 0 {
		Usage(os.Stderr)
		return errors.New("missing command")
	}
	switch args[0] {
	case "auth":
		return authCmd(ctx, args[1:])
	case "events":
		return eventsCmd(ctx, args[1:])
	case "cities":
		return citiesCmd(ctx, args[1:])
	case "upload":
		return uploadCmd(ctx, args[1:])
	case "cache":
		return cacheCmd(ctx, args[1:])
	case "help", "-h", "--help":
		Usage(os.Stdout)
		return nil
	default:
		Usage(os.Stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}
