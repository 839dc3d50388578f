package main

import (
	"chat-garden/services"
	"os"

	"github.com/spf13/cobra"
)

func (c *CLI) profileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and edit profiles",
	}

	show := &cobra.Command{
		Use:   "show [actor]",
		Short: "Show a profile, yours by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := c.app.Session()
			actor := session.Actor
			if len(args) == 1 {
				actor = args[0]
			}
			if actor == "" {
				_, err := c.app.RequireSession()
				return err
			}
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()
			profile, err := c.app.profiles.Load(ctx, session, actor)
			if err != nil {
				return err
			}
			c.print.profile(profile, actor)
			return nil
		},
	}

	var (
		form     services.ProfileForm
		iconFile string
	)
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Change your profile; fields not given keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := c.app.RequireSession()
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()

			current, err := c.app.profiles.Load(ctx, session, session.Actor)
			if err != nil {
				return err
			}
			next := services.ProfileForm{}
			if current != nil {
				next = services.ProfileForm{
					Name: current.Name, Pronouns: current.Pronouns,
					Bio: current.Bio, Icon: current.Icon,
				}
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				next.Name = form.Name
			}
			if flags.Changed("pronouns") {
				next.Pronouns = form.Pronouns
			}
			if flags.Changed("bio") {
				next.Bio = form.Bio
			}
			if flags.Changed("icon") {
				next.Icon = form.Icon
			}
			if iconFile != "" {
				file, err := os.Open(iconFile)
				if err != nil {
					return err
				}
				next.Icon, err = c.app.profiles.IconFromFile(file)
				_ = file.Close()
				if err != nil {
					return err
				}
			}

			saved, err := c.app.profiles.Save(ctx, session, next)
			if err != nil {
				return err
			}
			c.print.profile(&saved, session.Actor)
			return nil
		},
	}
	edit.Flags().StringVar(&form.Name, "name", "", "display name")
	edit.Flags().StringVar(&form.Pronouns, "pronouns", "", "pronouns")
	edit.Flags().StringVar(&form.Bio, "bio", "", "a few words about you")
	edit.Flags().StringVar(&form.Icon, "icon", "", "icon URL")
	edit.Flags().StringVar(&iconFile, "icon-file", "", "image file to use as icon")

	cmd.AddCommand(show, edit)
	return cmd
}
