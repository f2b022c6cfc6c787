package main

import (
	"fmt"
	"os"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/screen"
	"github.com/urfave/cli/v2"
)

func favoritesCommand() *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "manage favorite events",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list favorited events",
				Action: listFavorites,
			},
			{
				Name:      "toggle",
				Usage:     "favorite or unfavorite an event",
				ArgsUsage: "<event-id>",
				Action:    toggleFavorite,
			},
			{
				Name:      "remove",
				Usage:     "unfavorite an event",
				ArgsUsage: "<event-id>",
				Action:    removeFavorite,
			},
			{
				Name:  "ics",
				Usage: "export favorites as an iCalendar feed",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tz", Usage: "IANA time zone of event times", Value: "UTC"},
					&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Usage: "write to file instead of stdout"},
				},
				Action: exportFavorites,
			},
		},
	}
}

func listFavorites(c *cli.Context) error {
	e := envOf(c)
	cl, err := e.signedIn()
	if err != nil {
		return err
	}
	favorites := screen.NewFavoriteEvents(cl, navigation.NewStack())
	if !favorites.Load(c.Context) {
		e.flushNotice(favorites)
		return cli.Exit("cannot load favorites", 1)
	}
	if favorites.IsEmpty() {
		fmt.Fprintln(e.out, screen.EmptyFavorites)
		return nil
	}
	printEvents(e.out, favorites.Events, nil)
	return nil
}

func toggleFavorite(c *cli.Context) error {
	id, err := eventIdArg(c)
	if err != nil {
		return err
	}
	e := envOf(c)
	cl, err := e.signedIn()
	if err != nil {
		return err
	}
	dashboard := screen.NewDashboard(cl, navigation.NewStack())
	if !dashboard.ToggleFavorite(c.Context, id) {
		e.flushNotice(dashboard)
		return cli.Exit("favorite not changed", 1)
	}
	if dashboard.IsFavorite(id) {
		fmt.Fprintf(e.out, "Favorited %s\n", id)
	} else {
		fmt.Fprintf(e.out, "Unfavorited %s\n", id)
	}
	return nil
}

func removeFavorite(c *cli.Context) error {
	id, err := eventIdArg(c)
	if err != nil {
		return err
	}
	e := envOf(c)
	cl, err := e.signedIn()
	if err != nil {
		return err
	}
	favorites := screen.NewFavoriteEvents(cl, navigation.NewStack())
	if !favorites.Remove(c.Context, id) {
		e.flushNotice(favorites)
		return cli.Exit("favorite not removed", 1)
	}
	fmt.Fprintf(e.out, "Removed %s from favorites\n", id)
	return nil
}

func exportFavorites(c *cli.Context) error {
	e := envOf(c)
	cl, err := e.signedIn()
	if err != nil {
		return err
	}
	ics, err := cl.FavoritesCalendar(c.Context, c.String("tz"))
	if err != nil {
		return err
	}
	if path := c.Path("out"); path != "" {
		return os.WriteFile(path, []byte(ics), 0o644)
	}
	fmt.Fprint(e.out, ics)
	return nil
}
