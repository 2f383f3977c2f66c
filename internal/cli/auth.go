package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tatd3v/ballroom-calendar-client/internal/api"
	"github.com/tatd3v/ballroom-calendar-client/internal/output"
)

func authCmd(ctx Context, args []string) error {
	if len(args) == 0 {
		return errors.New("auth subcommand required: login|logout|status")
	}
	switch args[0] {
	case "login":
		fs := flag.NewFlagSet("ballroom auth login", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		email := fs.String("email", "", "Account email")
		password := fs.String("password", "", "Account password")
		_ = fs.Parse(args[1:])
		if strings.TrimSpace(*email) == "" || strings.TrimSpace(*password) == "" {
			return errors.New("usage: ballroom auth login --email <e> --password <p>")
		}

		c := &api.Client{BaseURL: ctx.APIBase}
		resp, err := c.Login(context.Background(), strings.TrimSpace(*email), *password)
		if err != nil {
			return err
		}
		if err := SaveCredentials(Credentials{
			Token: resp.Token,
			Email: resp.User.Email,
			Name:  resp.User.Name,
		}); err != nil {
			return err
		}
		return output.Write(os.Stdout, ctx.Output, resp.User)

	case "logout":
		if err := ClearCredentials(); err != nil {
			return err
		}
		return output.Write(os.Stdout, ctx.Output, map[string]string{"status": "logged out"})

	case "status":
		return authStatus(ctx)

	default:
		return fmt.Errorf("unknown auth subcommand: %s", args[0])
	}
}

// authStatus reports the stored session without a network trip: the
// token's claims are decoded unverified, purely to show who is logged in
// and until when. Verification is the server's job.
func authStatus(ctx Context) error {
	token := strings.TrimSpace(ctx.Token)
	if token == "" {
		return output.Write(os.Stdout, ctx.Output, map[string]any{"logged_in": false})
	}

	status := map[string]any{"logged_in": true}
	if cred, err := LoadCredentials(); err == nil {
		if cred.Email != "" {
			status["email"] = cred.Email
		}
		if cred.Name != "" {
			status["name"] = cred.Name
		}
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err == nil {
		if sub, err := parsed.Claims.GetSubject(); err == nil && sub != "" {
			status["subject"] = sub
		}
		if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
			status["expires_at"] = exp.Format(time.RFC3339)
			status["expired"] = time.Now().After(exp.Time)
		}
	}
	return output.Write(os.Stdout, ctx.Output, status)
}
