package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "eventctl",
		Usage: "manage your events and favorites from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "base URL of the eventdeck API",
				Value:   "http://localhost:8181",
				EnvVars: []string{"EVENTDECK_SERVER"},
			},
			&cli.StringFlag{
				Name:    "session-file",
				Usage:   "where the signed-in session is kept (default: user config dir)",
				EnvVars: []string{"EVENTDECK_SESSION_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			path := c.String("session-file")
			if path == "" {
				var err error
				if path, err = defaultSessionPath(); err != nil {
					return err
				}
			}
			c.App.Metadata = map[string]any{envKey: newEnv(c.String("server"), path, c.App.Reader, c.App.Writer)}
			return nil
		},
		Commands: []*cli.Command{
			signUpCommand(),
			signInCommand(),
			signOutCommand(),
			eventsCommand(),
			favoritesCommand(),
			shellCommand(),
		},
	}
}
