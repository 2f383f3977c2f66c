package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tatd3v/ballroom-calendar-client/internal/cli"
	"github.com/tatd3v/ballroom-calendar-client/internal/output"
)

func main() {
	var (
		apiBase = flag.String("api-base", "", "Calendar API base URL (env: BALLROOM_API_BASE)")
		token   = flag.String("token", "", "Bearer token (env: BALLROOM_TOKEN)")
		lang    = flag.String("lang", "", "Display language, es|en (env: BALLROOM_LANG)")
		outFmt  = flag.String("output", "json", "Output format: json|text|markdown")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		cli.Usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	if strings.TrimSpace(*apiBase) != "" {
		cfg.APIBase = strings.TrimRight(strings.TrimSpace(*apiBase), "/")
	}
	if strings.TrimSpace(*lang) != "" {
		cfg.Lang = strings.TrimSpace(*lang)
	}

	ctx := cli.Context{
		APIBase: cfg.APIBase,
		Lang:    cfg.Lang,
		Output:  output.Format(strings.TrimSpace(*outFmt)),
	}

	// Token resolution order: flag, env, credentials file.
	if strings.TrimSpace(*token) != "" {
		ctx.Token = strings.TrimSpace(*token)
	} else if v := strings.TrimSpace(os.Getenv("BALLROOM_TOKEN")); v != "" {
		ctx.Token = v
	} else if cred, err := cli.LoadCredentials(); err == nil {
		ctx.Token = strings.TrimSpace(cred.Token)
	}

	if err := cli.Dispatch(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
