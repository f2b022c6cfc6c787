package main

import (
	"fmt"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/screen"
	"github.com/urfave/cli/v2"
)

func credentialFlags(withConfirmation bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "email", Aliases: []string{"e"}},
		&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "prompted for when omitted"},
	}
	if withConfirmation {
		flags = append(flags, &cli.StringFlag{Name: "confirm", Usage: "password confirmation"})
	}
	return flags
}

func signUpCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "create an account and sign in",
		Flags: credentialFlags(true),
		Action: func(c *cli.Context) error {
			e := envOf(c)
			form := screen.NewSignUp(e.anonymous(), navigation.NewStack())
			var err error
			if form.Email, err = e.valueOrPrompt(c, "email", "Email: "); err != nil {
				return err
			}
			if form.Password, err = e.valueOrPrompt(c, "password", "Password: "); err != nil {
				return err
			}
			if form.ConfirmPassword, err = e.valueOrPrompt(c, "confirm", "Confirm password: "); err != nil {
				return err
			}

			session, ok := form.Submit(c.Context)
			if !ok {
				e.printErrors(form.Errors)
				e.flushNotice(form)
				return cli.Exit("sign up failed", 1)
			}
			if err := e.saveSession(session); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Signed up as %s\n", session.Email)
			return nil
		},
	}
}

func signInCommand() *cli.Command {
	return &cli.Command{
		Name:  "signin",
		Usage: "sign in with email and password",
		Flags: credentialFlags(false),
		Action: func(c *cli.Context) error {
			e := envOf(c)
			form := screen.NewSignIn(e.anonymous(), navigation.NewStack())
			var err error
			if form.Email, err = e.valueOrPrompt(c, "email", "Email: "); err != nil {
				return err
			}
			if form.Password, err = e.valueOrPrompt(c, "password", "Password: "); err != nil {
				return err
			}

			session, ok := form.Submit(c.Context)
			if !ok {
				e.printErrors(form.Errors)
				e.flushNotice(form)
				return cli.Exit("sign in failed", 1)
			}
			if err := e.saveSession(session); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Signed in as %s\n", session.Email)
			return nil
		},
	}
}

func signOutCommand() *cli.Command {
	return &cli.Command{
		Name:  "signout",
		Usage: "end the stored session",
		Action: func(c *cli.Context) error {
			e := envOf(c)
			cl, err := e.signedIn()
			if err != nil {
				return err
			}
			dashboard := screen.NewDashboard(cl, navigation.NewStack())
			if !dashboard.Logout(c.Context) {
				e.flushNotice(dashboard)
				return cli.Exit("sign out failed", 1)
			}
			if err := e.forgetSession(); err != nil {
				return err
			}
			fmt.Fprintln(e.out, "Signed out")
			return nil
		},
	}
}
