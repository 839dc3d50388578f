package main

import (
	"chat-garden/domain"

	"github.com/spf13/cobra"
)

func (c *CLI) registerCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <actor>",
		Short: "Create an actor on the store and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.authenticate(cmd, args[0], password, true)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, read from stdin when omitted")
	return cmd
}

func (c *CLI) loginCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <actor>",
		Short: "Open a session as the actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.authenticate(cmd, args[0], password, false)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, read from stdin when omitted")
	return cmd
}

// authenticate opens a session. The embedded store trusts the actor name as is.
func (c *CLI) authenticate(cmd *cobra.Command, actor, password string, register bool) error {
	app := c.app
	if app.config.Embedded() {
		app.prefs.SaveSession(domain.Session{Actor: actor})
		app.notifier.Info("Logged in as %s", actor)
		return nil
	}

	password, err := c.readPassword(password)
	if err != nil {
		return err
	}
	ctx, cancel := c.withTimeout(cmd.Context())
	defer cancel()

	var session domain.Session
	if register {
		session, err = app.sessions.Register(ctx, actor, password)
	} else {
		session, err = app.sessions.Login(ctx, actor, password)
	}
	if err != nil {
		return err
	}
	app.prefs.SaveSession(session)
	app.notifier.Info("Logged in as %s", session.Actor)
	return nil
}

func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.app.prefs.SaveSession(domain.Session{})
			c.app.notifier.Info("Logged out")
			return nil
		},
	}
}

func (c *CLI) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session actor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := c.app.RequireSession()
			if err != nil {
				return err
			}
			c.print.line("%s", session.Actor)
			return nil
		},
	}
}
