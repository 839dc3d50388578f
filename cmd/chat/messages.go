package main

import (
	"chat-garden/domain"
	"chat-garden/infrastructure/search"
	"chat-garden/services"
	"context"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

// workspace selects the --community flag, when given, and opens the workspace on it.
func (c *CLI) workspace(ctx context.Context, community string) (*services.Workspace, error) {
	if community != "" {
		if _, err := c.app.communities.Select(community); err != nil {
			return nil, err
		}
	}
	return c.app.Workspace(ctx)
}

func (c *CLI) sendCommand() *cobra.Command {
	var community string
	cmd := &cobra.Command{
		Use:   "send <text...>",
		Short: "Post a message to the current community",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.RequireSession(); err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()
			workspace, err := c.workspace(ctx, community)
			if err != nil {
				return err
			}
			message, err := workspace.Send(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			c.print.line("Sent %s", Ref(message.Key()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&community, "community", "c", "", "community to post to")
	return cmd
}

func (c *CLI) messagesCommand() *cobra.Command {
	var community string
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"ls"},
		Short:   "Show the timeline of the current community",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()
			workspace, err := c.workspace(ctx, community)
			if err != nil {
				return err
			}
			c.print.line("%s", c.print.paint(color.New(color.OpBold), "# "+c.app.communities.Selected().Name))
			c.print.messages(workspace.Timeline(), workspace.Session(), c.app.tags.TagsFor)
			return nil
		},
	}
	cmd.Flags().StringVarP(&community, "community", "c", "", "community to show")
	return cmd
}

func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <ref> <text...>",
		Short: "Replace the content of one of your messages",
		Long:  "Replace the content of one of your messages. Blank text cancels the edit.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.RequireSession(); err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()
			workspace, err := c.app.Workspace(ctx)
			if err != nil {
				return err
			}
			key, err := resolveRef(workspace.Timeline(), args[0])
			if err != nil {
				return err
			}
			if err = workspace.StartEdit(key); err != nil {
				return err
			}
			if err = workspace.SetEditBuffer(strings.Join(args[1:], " ")); err != nil {
				return err
			}
			saved, err := workspace.SaveEdit(ctx)
			if err != nil {
				return err
			}
			if !saved {
				c.print.line("Edit cancelled")
				return nil
			}
			c.print.line("Edited %s", Ref(key))
			return nil
		},
	}
}

func (c *CLI) deleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete one of your messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.RequireSession(); err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()
			workspace, err := c.app.Workspace(ctx)
			if err != nil {
				return err
			}
			key, err := resolveRef(workspace.Timeline(), args[0])
			if err != nil {
				return err
			}
			confirm := c.Confirm
			if yes {
				confirm = func(string) bool { return true }
			}
			deleted, err := workspace.DeleteMessage(ctx, key, confirm)
			if err != nil {
				return err
			}
			if deleted {
				c.print.line("Deleted %s", Ref(key))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// followCommand prints the timeline as it changes and sends every line typed on stdin.
func (c *CLI) followCommand() *cobra.Command {
	var community string
	cmd := &cobra.Command{
		Use:   "follow",
		Short: "Live view of the current community; type lines to send them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			workspace, err := c.workspace(ctx, community)
			if err != nil {
				return err
			}
			updates, err := c.app.store.Watch(ctx, []string{workspace.Channel()})
			if err != nil {
				return err
			}
			session := workspace.Session()
			c.print.messages(workspace.Timeline(), session, c.app.tags.TagsFor)

			lines := make(chan string)
			go func() {
				defer close(lines)
				for {
					line, err := c.in.ReadString('\n')
					if line = strings.TrimSpace(line); line != "" {
						select {
						case lines <- line:
						case <-ctx.Done():
							return
						}
					}
					if err != nil {
						return
					}
				}
			}()

			for {
				select {
				case <-ctx.Done():
					return nil
				case object, ok := <-updates:
					if !ok {
						return nil
					}
					if !workspace.Apply(object) {
						continue
					}
					if object.Tombstone {
						c.print.line("%s", c.print.paint(color.New(color.FgGray), "- "+Ref(object.URL)+" deleted"))
						continue
					}
					message := domain.MessageFromObject(object)
					c.print.line("%s %s: %s", Ref(message.Key()), domain.ShortenActor(message.Actor), message.Content)
				case line, ok := <-lines:
					if !ok || line == "/quit" {
						return nil
					}
					if session.Actor == "" {
						c.app.notifier.Warn("Log in to send messages")
						c.print.notices(c.app.notifier.Drain())
						continue
					}
					sendCtx, cancel := c.withTimeout(ctx)
					_, err := workspace.Send(sendCtx, line)
					cancel()
					if err != nil {
						c.print.notices(c.app.notifier.Drain())
					}
				}
			}
		},
	}
	cmd.Flags().StringVarP(&community, "community", "c", "", "community to follow")
	return cmd
}

func (c *CLI) searchCommand() *cobra.Command {
	var (
		community string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "search <terms...>",
		Short: "Full-text search over the messages seen so far",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := c.app.messages.Search(strings.Join(args, " "), community, limit)
			if err != nil {
				return err
			}
			c.print.messages(messages, c.app.Session(), c.app.tags.TagsFor)
			return nil
		},
	}
	cmd.Flags().StringVarP(&community, "community", "c", "", "only search this community")
	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "maximum number of results")
	return cmd
}
