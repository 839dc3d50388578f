package main

import (
	"github.com/spf13/cobra"
)

func (c *CLI) communitiesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "communities",
		Aliases: []string{"community", "c"},
		Short:   "List, join and manage communities",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.listCommunities(false)
			return nil
		},
	}

	var joinedOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the communities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.listCommunities(joinedOnly)
			return nil
		},
	}
	list.Flags().BoolVar(&joinedOnly, "joined", false, "only the joined communities")

	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a community and join it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := c.app.RequireSession()
			if err != nil {
				return err
			}
			community, err := c.app.communities.Create(args[0], description, session.Actor)
			if err != nil {
				return err
			}
			c.print.line("Created %s (%s)", community.Name, community.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "what the community is about")

	join := &cobra.Command{
		Use:   "join <id>",
		Short: "Join a community",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.communities.Join(args[0])
		},
	}

	leave := &cobra.Command{
		Use:   "leave <id>",
		Short: "Leave a community",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.communities.Leave(args[0])
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a community you created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := c.app.RequireSession()
			if err != nil {
				return err
			}
			return c.app.communities.Delete(args[0], session.Actor)
		},
	}

	selectCmd := &cobra.Command{
		Use:   "select <id>",
		Short: "Make a community the current one, joining it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			community, err := c.app.communities.Select(args[0])
			if err != nil {
				return err
			}
			c.print.line("Now in %s", community.Name)
			return nil
		},
	}

	cmd.AddCommand(list, create, join, leave, remove, selectCmd)
	return cmd
}

func (c *CLI) listCommunities(joinedOnly bool) {
	communities := c.app.communities.List()
	if joinedOnly {
		communities = c.app.communities.Joined()
	}
	c.print.communities(communities, c.app.communities.IsJoined, c.app.communities.Selected().ID)
}
