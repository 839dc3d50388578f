package main

import (
	"bufio"
	"chat-garden/domain"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// CLI opens the App lazily so that --help never touches the data dir.
type CLI struct {
	config Config
	in     *bufio.Reader
	print  printer
	app    *App
	open   func(Config) (*App, error)
}

func NewCLI(config Config, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		config: config,
		in:     bufio.NewReader(in),
		print:  printer{out: out, colours: config.Colours},
		open:   OpenApp,
	}
}

func (c *CLI) Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "chat",
		Short:         "Group chat over a shared object store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.app != nil {
				return nil
			}
			app, err := c.open(c.config)
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
	}
	root.AddCommand(
		c.registerCommand(),
		c.loginCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
		c.communitiesCommand(),
		c.sendCommand(),
		c.messagesCommand(),
		c.editCommand(),
		c.deleteCommand(),
		c.followCommand(),
		c.searchCommand(),
		c.tagCommand(),
		c.profileCommand(),
	)
	return root
}

// Close flushes pending notices and releases the App.
func (c *CLI) Close() {
	if c.app == nil {
		return
	}
	c.print.notices(c.app.notifier.Drain())
	if err := c.app.Close(); err != nil {
		c.app.log.Error("Failed to close local storage", "error", err)
	}
	c.app = nil
}

// Confirm asks a yes/no question on the CLI input.
func (c *CLI) Confirm(prompt string) bool {
	c.print.line("%s [y/N]", prompt)
	answer, _ := c.in.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (c *CLI) readPassword(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	c.print.line("Password:")
	password, err := c.in.ReadString('\n')
	if err != nil && password == "" {
		return "", fmt.Errorf("no password given: %w", err)
	}
	return strings.TrimRight(password, "\r\n"), nil
}

func (c *CLI) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.config.Timeout)
}

// resolveRef finds the message a user typed: its full key, or a unique key suffix.
func resolveRef(messages []domain.Message, ref string) (string, error) {
	var matches []string
	for _, m := range messages {
		if m.Key() == ref {
			return ref, nil
		}
		if strings.HasSuffix(m.Key(), ref) {
			matches = append(matches, m.Key())
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no message %q in this community", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d messages, type more of it", ref, len(matches))
	}
}
