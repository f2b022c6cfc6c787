package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/client"
	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/eventdeck/eventdeck/pkg/screen"
	"github.com/eventdeck/eventdeck/pkg/user"
	"github.com/urfave/cli/v2"
)

var errQuit = errors.New("quit")

func shellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "interactive mode, screen by screen",
		Action: func(c *cli.Context) error {
			sh, err := newShell(envOf(c))
			if err != nil {
				return err
			}
			err = sh.run(c.Context)
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		},
	}
}

// shell renders the screen on top of the navigation stack and reads one action at a time.
type shell struct {
	env       *env
	nav       *navigation.Stack
	client    *client.Client
	dashboard *screen.Dashboard
}

func newShell(e *env) (*shell, error) {
	sh := &shell{env: e, nav: navigation.NewStack(), client: e.anonymous()}
	session, ok, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	if ok {
		sh.client = sh.client.WithSession(session)
		sh.nav.Replace(navigation.Home, nil)
	}
	return sh, nil
}

func (sh *shell) run(ctx context.Context) error {
	defer sh.closeDashboard()
	for {
		if ctx.Err() != nil {
			return nil
		}
		var err error
		switch route := sh.nav.Current(); route.Name {
		case navigation.SignIn:
			err = sh.signIn(ctx)
		case navigation.SignUp:
			err = sh.signUp(ctx)
		case navigation.Home:
			err = sh.home(ctx)
		case navigation.CreateEvent, navigation.EditEvent:
			err = sh.eventForm(ctx, route.Name)
		case navigation.EventDetail:
			err = sh.eventDetail()
		case navigation.FavoriteEvents:
			err = sh.favorites(ctx)
		default:
			return fmt.Errorf("no screen for route %s", route.Name)
		}
		if err != nil {
			return err
		}
	}
}

func (sh *shell) signIn(ctx context.Context) error {
	fmt.Fprintln(sh.env.out, "== Sign in ==  (leave email empty to sign up, q to quit)")
	email, err := sh.env.prompt("Email: ")
	if err != nil {
		return err
	}
	form := screen.NewSignIn(sh.client, sh.nav)
	switch email {
	case "q":
		return errQuit
	case "":
		form.GoToSignUp()
		return nil
	}
	form.Email = email
	if form.Password, err = sh.env.prompt("Password: "); err != nil {
		return err
	}
	session, ok := form.Submit(ctx)
	if !ok {
		sh.env.printErrors(form.Errors)
		sh.env.flushNotice(form)
		return nil
	}
	return sh.startSession(session)
}

func (sh *shell) signUp(ctx context.Context) error {
	fmt.Fprintln(sh.env.out, "== Sign up ==  (leave email empty to go back)")
	form := screen.NewSignUp(sh.client, sh.nav)
	var err error
	if form.Email, err = sh.env.prompt("Email: "); err != nil {
		return err
	}
	if form.Email == "" {
		form.GoToSignIn()
		return nil
	}
	if form.Password, err = sh.env.prompt("Password: "); err != nil {
		return err
	}
	if form.ConfirmPassword, err = sh.env.prompt("Confirm password: "); err != nil {
		return err
	}
	session, ok := form.Submit(ctx)
	if !ok {
		sh.env.printErrors(form.Errors)
		sh.env.flushNotice(form)
		return nil
	}
	return sh.startSession(session)
}

// startSession keeps the session for later runs and binds the client to it.
func (sh *shell) startSession(session user.Session) error {
	sh.client = sh.client.WithSession(session)
	return sh.env.saveSession(session)
}

func (sh *shell) home(ctx context.Context) error {
	if sh.dashboard == nil {
		sh.dashboard = screen.NewDashboard(sh.client, sh.nav)
		if err := sh.dashboard.Open(ctx); err != nil {
			sh.env.flushNotice(sh.dashboard)
			sh.dashboard = nil
			_, err := sh.env.prompt("Press enter to retry, or interrupt to quit.")
			return err
		}
	}
	d := sh.dashboard
	sh.env.flushNotice(d)
	events := d.Events()
	fmt.Fprintln(sh.env.out, "== Your events ==")
	sh.printNumbered(events, d.IsFavorite)
	fmt.Fprintln(sh.env.out, "[n]ew  [s N]how  [e N]dit  [d N]elete  [f N] toggle favorite  [v] favorites  [r]efresh  [l]ogout  [q]uit")

	cmd, idx, err := sh.command(len(events))
	if err != nil {
		return err
	}
	switch cmd {
	case "n":
		d.CreateEvent()
	case "s":
		d.ShowEvent(events[idx])
	case "e":
		d.EditEvent(events[idx])
	case "d":
		confirmation := d.RequestDelete(events[idx].Id)
		if sh.env.confirm(fmt.Sprintf("Delete %q?", events[idx].EventName)) {
			confirmation.Confirm(ctx)
		} else {
			confirmation.Cancel()
		}
	case "f":
		d.ToggleFavorite(ctx, events[idx].Id)
	case "v":
		d.ShowFavorites()
	case "l":
		if d.Logout(ctx) {
			sh.dashboard = nil
			sh.client = sh.env.anonymous()
			return sh.env.forgetSession()
		}
	case "q":
		return errQuit
	}
	return nil
}

func (sh *shell) eventForm(ctx context.Context, route navigation.Name) error {
	var (
		form *screen.EventForm
		err  error
	)
	if route == navigation.EditEvent {
		fmt.Fprintln(sh.env.out, "== Edit event ==  (enter keeps the current value)")
		if form, err = screen.NewEditEvent(sh.client, sh.nav); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(sh.env.out, "== New event ==")
		form = screen.NewCreateEvent(sh.client, sh.nav)
	}

	for _, field := range []struct {
		label string
		value *string
	}{
		{"Event name", &form.EventName},
		{"Description", &form.Description},
		{"Location", &form.Location},
		{"Date (YYYY-MM-DD)", &form.Date},
		{"Time (HH:MM)", &form.Time},
	} {
		label := field.label + ": "
		if *field.value != "" {
			label = fmt.Sprintf("%s [%s]: ", field.label, *field.value)
		}
		answer, err := sh.env.prompt(label)
		if err != nil {
			return err
		}
		if answer != "" || !form.IsEdit() {
			*field.value = answer
		}
	}

	if _, ok := form.Submit(ctx); !ok {
		sh.env.printErrors(form.Errors)
		sh.env.flushNotice(form)
		if !sh.env.confirm("Try again?") {
			form.Cancel()
		}
	}
	return nil
}

func (sh *shell) eventDetail() error {
	detail, err := screen.NewEventDetail(sh.nav)
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.env.out, "== Event ==")
	printDetail(sh.env.out, detail)
	answer, err := sh.env.prompt("[e]dit  [b]ack: ")
	if err != nil {
		return err
	}
	if answer == "e" {
		detail.Edit()
	} else {
		detail.Back()
	}
	return nil
}

func (sh *shell) favorites(ctx context.Context) error {
	f := screen.NewFavoriteEvents(sh.client, sh.nav)
	fmt.Fprintln(sh.env.out, "== Favorite events ==")
	if !f.Load(ctx) {
		sh.env.flushNotice(f)
	} else if f.IsEmpty() {
		fmt.Fprintln(sh.env.out, screen.EmptyFavorites)
	} else {
		sh.printNumbered(f.Events, nil)
	}
	fmt.Fprintln(sh.env.out, "[s N]how  [x N] remove favorite  [b]ack")

	cmd, idx, err := sh.command(len(f.Events))
	if err != nil {
		return err
	}
	switch cmd {
	case "s":
		f.ShowEvent(f.Events[idx])
	case "x":
		if !f.Remove(ctx, f.Events[idx].Id) {
			sh.env.flushNotice(f)
		}
	case "b", "q":
		f.Back()
	}
	return nil
}

func (sh *shell) printNumbered(events []event.Event, isFavorite func(string) bool) {
	if len(events) == 0 {
		fmt.Fprintln(sh.env.out, "  (none)")
		return
	}
	for i, ev := range events {
		mark := " "
		if isFavorite != nil && isFavorite(ev.Id) {
			mark = "*"
		}
		fmt.Fprintf(sh.env.out, "%s %2d. %s  @ %s  %s %s\n", mark, i+1, ev.EventName, ev.Location, ev.Date, ev.Time)
	}
}

// command reads "<letter> [N]" and resolves N to a zero-based index within size.
// Commands that need an index are ignored when N is missing or out of range.
func (sh *shell) command(size int) (string, int, error) {
	line, err := sh.env.prompt("> ")
	if err != nil {
		return "", 0, err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", 0, nil
	}
	cmd := fields[0]
	switch cmd {
	case "s", "e", "d", "f", "x":
		if len(fields) != 2 {
			fmt.Fprintln(sh.env.out, "which one? add its number")
			return "", 0, nil
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > size {
			fmt.Fprintf(sh.env.out, "no item %s\n", fields[1])
			return "", 0, nil
		}
		return cmd, n - 1, nil
	}
	return cmd, 0, nil
}

func (sh *shell) closeDashboard() {
	if sh.dashboard != nil {
		sh.dashboard.Close()
		sh.dashboard = nil
	}
}
