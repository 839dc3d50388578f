package main

import (
	"chat-garden/domain"
	"chat-garden/services"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const refLength = 8

// Ref is the short handle of a message shown in tables and accepted by commands.
func Ref(key string) string {
	if len(key) <= refLength {
		return key
	}
	return key[len(key)-refLength:]
}

type printer struct {
	out     io.Writer
	colours bool
}

func (p printer) table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func (p printer) paint(style color.Style, text string) string {
	if !p.colours {
		return text
	}
	return style.Render(text)
}

func (p printer) line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p printer) notices(notices []services.Notice) {
	for _, n := range notices {
		switch n.Level {
		case services.NoticeError:
			p.line("%s", p.paint(color.New(color.FgRed, color.OpBold), "✖ "+n.Text))
		case services.NoticeWarn:
			p.line("%s", p.paint(color.New(color.FgYellow), "! "+n.Text))
		default:
			p.line("%s", p.paint(color.New(color.FgGreen), "✔ "+n.Text))
		}
	}
}

func (p printer) communities(all []domain.Community, joined func(string) bool, selected string) {
	rows := make([][]string, 0, len(all))
	for _, c := range all {
		marker := ""
		if c.ID == selected {
			marker = "*"
		}
		rows = append(rows, []string{marker, c.ID, c.Name, c.Description, yesNo(joined(c.ID)), c.CreatedBy})
	}
	p.table([]string{"", "ID", "Name", "Description", "Joined", "Creator"}, rows)
}

func (p printer) messages(messages []domain.Message, session domain.Session, tagsFor func(string) []string) {
	rows := make([][]string, 0, len(messages))
	for _, m := range messages {
		author := domain.ShortenActor(m.Actor)
		if m.Actor != "" && m.Actor == session.Actor {
			author = p.paint(color.New(color.FgCyan), author+" (you)")
		}
		content := m.Content
		if m.Edited {
			content += " (edited)"
		}
		rows = append(rows, []string{
			Ref(m.Key()), author, timestamp(m.Published), content,
			strings.Join(tagsFor(m.Key()), ", "),
		})
	}
	p.table([]string{"Ref", "Author", "Published", "Content", "Tags"}, rows)
}

func (p printer) tagged(grouped map[string][]domain.TaggedMessage, order []string) {
	for _, community := range order {
		p.line("%s", p.paint(color.New(color.FgMagenta, color.OpBold), community))
		rows := make([][]string, 0, len(grouped[community]))
		for _, t := range grouped[community] {
			rows = append(rows, []string{Ref(t.MessageID), domain.ShortenActor(t.Actor), timestamp(t.Published), t.Content})
		}
		p.table([]string{"Ref", "Author", "Published", "Content"}, rows)
	}
}

func (p printer) profile(profile *domain.Profile, actor string) {
	if profile == nil {
		p.line("%s has no profile yet", domain.ShortenActor(actor))
		return
	}
	icon := profile.Icon
	if strings.HasPrefix(icon, "data:") {
		icon = strings.SplitN(icon, ",", 2)[0]
	}
	p.table([]string{"Field", "Value"}, [][]string{
		{"Actor", actor},
		{"Name", domain.DisplayName(profile, actor)},
		{"Pronouns", profile.Pronouns},
		{"Bio", profile.Bio},
		{"Icon", icon},
		{"Updated", timestamp(profile.Published)},
	})
}

func timestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
