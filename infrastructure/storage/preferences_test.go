package storage

import (
	"chat-garden/domain"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Get(string) ([]byte, error) { return nil, fmt.Errorf("disk on fire") }
func (failingStore) Set(string, []byte) error   { return fmt.Errorf("disk on fire") }

func TestPreferences_Round_Trip(t *testing.T) {
	req := require.New(t)
	prefs := NewPreferences(NewKeyValueStore(openBadger(t)), slog.Default())

	// Given nothing was ever stored
	req.Empty(prefs.Tags())
	req.NotNil(prefs.Tags())
	req.Empty(prefs.Communities())
	req.Empty(prefs.JoinedCommunities())

	// When the three blobs are written
	tags := domain.TagBook{"general": {{MessageID: "garden:bob:1", Tag: "urgent", CommunityName: "General"}}}
	communities := []domain.Community{{ID: "knitting", Name: "Knitting", CreatedBy: "alice"}}
	prefs.SaveTags(tags)
	prefs.SaveCommunities(communities)
	prefs.SaveJoinedCommunities([]string{"general", "knitting"})

	// Then they read back
	req.Equal(tags, prefs.Tags())
	req.Equal(communities, prefs.Communities())
	req.Equal([]string{"general", "knitting"}, prefs.JoinedCommunities())
}

func TestPreferences_Malformed_Blob_Resets_Namespace(t *testing.T) {
	req := require.New(t)
	store := NewKeyValueStore(openBadger(t))
	prefs := NewPreferences(store, slog.Default())

	req.NoError(store.Set(TagsKey, []byte("{not json")))
	req.NoError(store.Set(JoinedCommunitiesKey, []byte(`["general"]`)))

	req.Equal(domain.TagBook{}, prefs.Tags())
	req.Equal([]string{"general"}, prefs.JoinedCommunities())
}

func TestPreferences_Storage_Failures_Are_Swallowed(t *testing.T) {
	req := require.New(t)
	prefs := NewPreferences(failingStore{}, slog.Default())

	req.NotPanics(func() {
		prefs.SaveTags(domain.TagBook{"general": nil})
	})
	req.Equal(domain.TagBook{}, prefs.Tags())
	req.Nil(prefs.Communities())
}

func TestPreferences_Session_And_Selection(t *testing.T) {
	req := require.New(t)
	prefs := NewPreferences(NewKeyValueStore(openBadger(t)), slog.Default())

	req.Equal(domain.Session{}, prefs.Session())
	req.Equal(domain.DefaultCommunityID, prefs.SelectedCommunity())

	prefs.SaveSession(domain.Session{Actor: "alice", Token: "jwt"})
	prefs.SaveSelectedCommunity("design")

	req.Equal(domain.Session{Actor: "alice", Token: "jwt"}, prefs.Session())
	req.Equal("design", prefs.SelectedCommunity())

	prefs.SaveSession(domain.Session{})
	req.Empty(prefs.Session().Actor)
}
