package main

import (
	"chat-garden/domain"
	"chat-garden/services"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func (c *CLI) tagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tag",
		Aliases: []string{"tags"},
		Short:   "Label messages and browse them by label",
	}

	add := &cobra.Command{
		Use:   "add <ref> <label...>",
		Short: "Label a message of the current community",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			record, err := workspace.Tag(ctx, key, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			c.print.line("Tagged %s with %q", Ref(record.MessageID), record.Tag)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every label in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, tag := range c.app.tags.AllTags() {
				c.print.line("%s", tag)
			}
			return nil
		},
	}

	var sync bool
	selectCmd := &cobra.Command{
		Use:   "select <label>",
		Short: "Show the messages carrying the label, grouped by community",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sync {
				if err := c.syncTags(cmd); err != nil {
					return err
				}
			}
			tagged := c.app.tags.SelectTag(args[0])
			if len(tagged) == 0 {
				c.print.line("No message is tagged %q", args[0])
				return nil
			}
			grouped := services.GroupByCommunity(tagged)
			order := lo.Keys(grouped)
			sort.Strings(order)
			c.print.tagged(grouped, order)
			return nil
		},
	}
	selectCmd.Flags().BoolVar(&sync, "sync", false, "pull the labels shared by everyone first")

	remove := &cobra.Command{
		Use:   "remove <label> <ref>",
		Short: "Take a label off a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := args[0]
			messageID, err := resolveTagged(c.app.tags.SelectTag(tag), args[1])
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()
			if err = c.app.tags.RemoveTag(ctx, c.app.Session(), tag, messageID); err != nil {
				return err
			}
			c.print.line("Removed %q from %s", tag, Ref(messageID))
			return nil
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the labels shared by everyone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.syncTags(cmd)
		},
	}

	cmd.AddCommand(add, list, selectCmd, remove, syncCmd)
	return cmd
}

func (c *CLI) syncTags(cmd *cobra.Command) error {
	ctx, cancel := c.withTimeout(cmd.Context())
	defer cancel()
	added, err := c.app.tags.Sync(ctx, c.app.Session())
	if err != nil {
		return err
	}
	c.print.line("%d shared labels pulled", added)
	return nil
}

func resolveTagged(tagged []domain.TaggedMessage, ref string) (string, error) {
	ids := lo.Uniq(lo.Map(tagged, func(t domain.TaggedMessage, _ int) string { return t.MessageID }))
	if lo.Contains(ids, ref) {
		return ref, nil
	}
	matches := lo.Filter(ids, func(id string, _ int) bool { return strings.HasSuffix(id, ref) })
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no message %q carries this label", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d messages, type more of it", ref, len(matches))
	}
}
