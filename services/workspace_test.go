package services

import (
	"chat-garden/domain"
	"chat-garden/errors"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newWorkspace(t *testing.T, session domain.Session) *Workspace {
	log := slog.Default()
	notifier := newNotifier()
	prefs := newPreferences(newMemoryStore())
	objects := newObjectStore(t)
	communities := NewCommunityService(prefs, notifier, log)
	messages := NewMessageService(objects, nil, nil, notifier, log, nil)
	tags := NewTagService(objects, prefs, communities, notifier, log)
	return NewWorkspace(session, communities, messages, tags, notifier, log)
}

func TestWorkspace_Flow(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ws := newWorkspace(t, alice)

	req.Equal(domain.DefaultCommunityID, ws.Channel())
	req.ErrorIs(ws.SelectCommunity(ctx, "nowhere"), errors.ErrCommunityNotFound)

	req.NoError(ws.SelectCommunity(ctx, "design"))
	req.Equal("design", ws.Channel())

	sent, err := ws.Send(ctx, "Mockups are up")
	req.NoError(err)
	req.Len(ws.Timeline(), 1)

	// Tagging then selecting the tag
	_, err = ws.Tag(ctx, sent.Key(), "review")
	req.NoError(err)
	tagged := ws.SelectTag("review")
	req.Len(tagged, 1)
	req.Equal("Design", tagged[0].CommunityName)

	// Selecting a community clears the tag
	req.NoError(ws.SelectCommunity(ctx, "design"))
	name, tagged := ws.SelectedTag()
	req.Empty(name)
	req.Empty(tagged)

	// Removing the selected tag refreshes the selection
	ws.SelectTag("review")
	req.NoError(ws.RemoveTag(ctx, "review", sent.Key()))
	_, tagged = ws.SelectedTag()
	req.Empty(tagged)

	// Edit toggle
	req.NoError(ws.StartEdit(sent.Key()))
	req.NoError(ws.SetEditBuffer("Mockups v2 are up"))
	saved, err := ws.SaveEdit(ctx)
	req.NoError(err)
	req.True(saved)
	req.Equal("Mockups v2 are up", ws.Timeline()[0].Content)
	req.True(ws.Timeline()[0].Edited)

	deleted, err := ws.DeleteMessage(ctx, sent.Key(), func(string) bool { return true })
	req.NoError(err)
	req.True(deleted)
	req.Empty(ws.Timeline())

	_, err = ws.Tag(ctx, sent.Key(), "gone")
	req.ErrorIs(err, errors.ErrMessageUnknown)
}

func TestWorkspace_Sidebar(t *testing.T) {
	req := require.New(t)
	ws := newWorkspace(t, alice)

	req.True(ws.SidebarOpen())
	req.False(ws.ToggleSidebar())
	req.True(ws.ToggleSidebar())
}
