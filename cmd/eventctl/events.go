package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/eventdeck/eventdeck/pkg/screen"
	"github.com/urfave/cli/v2"
)

func eventFieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "event name"},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
		&cli.StringFlag{Name: "location", Aliases: []string{"l"}},
		&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD"},
		&cli.StringFlag{Name: "time", Usage: "HH:MM"},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "manage your events",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list your events",
				Action: listEvents,
			},
			{
				Name:      "show",
				Usage:     "show one event",
				ArgsUsage: "<event-id>",
				Action:    showEvent,
			},
			{
				Name:   "create",
				Usage:  "create an event",
				Flags:  eventFieldFlags(),
				Action: createEvent,
			},
			{
				Name:      "edit",
				Usage:     "change fields of an event",
				ArgsUsage: "<event-id>",
				Flags:     eventFieldFlags(),
				Action:    editEvent,
			},
			{
				Name:      "delete",
				Usage:     "delete an event",
				ArgsUsage: "<event-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation"},
				},
				Action: deleteEvent,
			},
			{
				Name:   "watch",
				Usage:  "print your event list whenever it changes",
				Action: watchEvents,
			},
		},
	}
}

func eventIdArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit("expected exactly one event id", 2)
	}
	return c.Args().First(), nil
}

func listEvents(c *cli.Context) error {
	e := envOf(c)
	cl, err := e.signedIn()
	if err != nil {
		return err
	}
	events, err := cl.ListEvents(c.Context)
	if err != nil {
		return err
	}
	printEvents(e.out, events, nil)
	return nil
}

func showEvent(c *cli.Context) error {
	id, err := eventIdArg(c)
	if err != nil {
		return err
	}
	e := envOf(c)
	cl, err := e.signedIn()
	if err != nil {
		return err
	}
	found, err := cl.GetEvent(c.Context, id)
	if err != nil {
		return err
	}
	nav := navigation.NewStack()
	nav.Navigate(navigation.EventDetail, navigation.WithEvent(found))
	detail, err := screen.NewEventDetail(nav)
	if err != nil {
		return err
	}
	printDetail(e.out, detail)
	return nil
}

func createEvent(c *cli.Context) error {
	e := envOf(c)
	cl, err := e.signedIn()
	if err != nil {
		return err
	}
	nav := navigation.NewStack()
	nav.Reset(navigation.Home, nil)
	nav.Navigate(navigation.CreateEvent, nil)
	form := screen.NewCreateEvent(cl, nav)
	applyFieldFlags(c, &form.Fields)

	created, ok := form.Submit(c.Context)
	if !ok {
		e.printErrors(form.Errors)
		e.flushNotice(form)
		return cli.Exit("event not created", 1)
	}
	fmt.Fprintf(e.out, "Created %s\n", created.Id)
	return nil
}

func editEvent(c *cli.Context) error {
	id, err := eventIdArg(c)
	if err != nil {
		return err
	}
	e := envOf(c)
	cl, err := e.signedIn()
	if err != nil {
		return err
	}
	current, err := cl.GetEvent(c.Context, id)
	if err != nil {
		return err
	}
	nav := navigation.NewStack()
	nav.Reset(navigation.Home, nil)
	nav.Navigate(navigation.EditEvent, navigation.WithEvent(current))
	form, err := screen.NewEditEvent(cl, nav)
	if err != nil {
		return err
	}
	applyFieldFlags(c, &form.Fields)

	if _, ok := form.Submit(c.Context); !ok {
		e.printErrors(form.Errors)
		e.flushNotice(form)
		return cli.Exit("event not updated", 1)
	}
	fmt.Fprintf(e.out, "Updated %s\n", id)
	return nil
}

func deleteEvent(c *cli.Context) error {
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
	confirmation := dashboard.RequestDelete(id)
	if !c.Bool("yes") && !e.confirm(fmt.Sprintf("Delete event %s?", id)) {
		confirmation.Cancel()
		fmt.Fprintln(e.out, "Cancelled")
		return nil
	}
	if !confirmation.Confirm(c.Context) {
		e.flushNotice(dashboard)
		return cli.Exit("event not deleted", 1)
	}
	fmt.Fprintf(e.out, "Deleted %s\n", id)
	return nil
}

func watchEvents(c *cli.Context) error {
	e := envOf(c)
	cl, err := e.signedIn()
	if err != nil {
		return err
	}
	dashboard := screen.NewDashboard(cl, navigation.NewStack())
	if err := dashboard.Open(c.Context); err != nil {
		e.flushNotice(dashboard)
		return cli.Exit("cannot watch events", 1)
	}
	defer dashboard.Close()
	e.flushNotice(dashboard)

	for {
		select {
		case <-c.Context.Done():
			return nil
		case <-dashboard.Updates():
			if e.flushNotice(dashboard) {
				return cli.Exit("live updates stopped", 1)
			}
			fmt.Fprintln(e.out, "---")
			printEvents(e.out, dashboard.Events(), dashboard.IsFavorite)
		}
	}
}

func applyFieldFlags(c *cli.Context, f *event.Fields) {
	if c.IsSet("name") {
		f.EventName = c.String("name")
	}
	if c.IsSet("description") {
		f.Description = c.String("description")
	}
	if c.IsSet("location") {
		f.Location = c.String("location")
	}
	if c.IsSet("date") {
		f.Date = c.String("date")
	}
	if c.IsSet("time") {
		f.Time = c.String("time")
	}
}

// printEvents writes a table of events. isFavorite may be nil.
func printEvents(out io.Writer, events []event.Event, isFavorite func(string) bool) {
	if len(events) == 0 {
		fmt.Fprintln(out, "No events.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLOCATION\tDATE\tTIME\tFAV")
	for _, ev := range events {
		fav := ""
		if isFavorite != nil && isFavorite(ev.Id) {
			fav = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", ev.Id, ev.EventName, ev.Location, ev.Date, ev.Time, fav)
	}
	w.Flush()
}

func printDetail(out io.Writer, detail *screen.EventDetail) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, line := range detail.Lines() {
		fmt.Fprintf(w, "%s:\t%s\n", line.Label, line.Value)
	}
	w.Flush()
}
