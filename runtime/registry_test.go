package runtime

import (
	"chat-garden/domain"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	received *[]domain.Object
}

func (s Sink) Consume(_ context.Context, o domain.Object) error {
	*s.received = append(*s.received, o)
	return nil
}

func newSink() Sink {
	return Sink{received: &[]domain.Object{}}
}

func TestRegistry_Subscribe_One_Channel_One_Subscriber(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	subscriberID := uuid.NewString()
	sink := newSink()

	// Given nobody watches
	req.Empty(registry.sinks)
	req.Empty(registry.channelWatchers)

	// When a subscriber watches a channel
	registry.Subscribe(subscriberID, []string{"general"}, sink)

	// Then
	req.Len(registry.sinks, 1)
	req.Len(registry.channelWatchers, 1)
	req.Contains(registry.channelWatchers["general"], subscriberID)
	req.Len(registry.GetSinksForChannels([]string{"general"}), 1)
}

func TestRegistry_Subscriber_On_Several_Channels_Is_Returned_Once(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	sink := newSink()

	registry.Subscribe(uuid.NewString(), []string{"general", "design"}, sink)

	req.Len(registry.GetSinksForChannels([]string{"general", "design"}), 1)
}

func TestRegistry_Unsubscribe_Drops_Empty_Channels(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	subscriberID1 := uuid.NewString()
	subscriberID2 := uuid.NewString()

	// Given two subscribers sharing a channel
	registry.Subscribe(subscriberID1, []string{"general", "design"}, newSink())
	registry.Subscribe(subscriberID2, []string{"general"}, newSink())

	// When the first one leaves
	registry.Unsubscribe(subscriberID1)

	// Then only the shared channel is left
	req.Len(registry.sinks, 1)
	req.Len(registry.channelWatchers, 1)
	req.Nil(registry.GetSinksForChannels([]string{"design"}))
	req.Len(registry.GetSinksForChannels([]string{"general"}), 1)
}

func TestRegistry_Publish_Reaches_Watchers_Only(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	watcher := newSink()
	other := newSink()
	registry.Subscribe(uuid.NewString(), []string{"general"}, watcher)
	registry.Subscribe(uuid.NewString(), []string{"random"}, other)

	registry.Publish(context.Background(), domain.Object{URL: "garden:alice:1", Channels: []string{"general"}})

	req.Len(*watcher.received, 1)
	req.Empty(*other.received)
}
