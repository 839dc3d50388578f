package storage

import (
	"chat-garden/domain"
	"chat-garden/errors"
	"chat-garden/infrastructure/schema"
	"chat-garden/runtime"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Session{Actor: "alice"}
	bob   = domain.Session{Actor: "bob"}
)

func openBadger(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newObjectStore(t *testing.T) *ObjectStore {
	log := slog.Default()
	return NewObjectStore(openBadger(t), log, schema.NewCueValidator(), runtime.NewRegistry(log))
}

func message(content string, published int64) domain.Object {
	return domain.Object{
		Channels: []string{"general"},
		Value:    domain.Message{Content: content, Published: published}.Value(),
	}
}

func TestObjectStore_Put_And_Discover(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newObjectStore(t)

	// Given two messages and a profile on other channels
	first, err := store.Put(ctx, message("hello", 1), alice)
	req.NoError(err)
	_, err = store.Put(ctx, message("hi alice", 2), bob)
	req.NoError(err)
	_, err = store.Put(ctx, domain.Object{
		Channels: []string{"alice"},
		Value:    domain.Profile{Name: "Alice", Describes: "alice", Published: 3}.Value(),
	}, alice)
	req.NoError(err)

	// Then the store assigned url and actor
	req.NotEmpty(first.URL)
	req.Equal("alice", first.Actor)
	req.False(first.LastModified.IsZero())

	// When discovering messages of the channel
	objects, err := store.Discover(ctx, []string{"general"}, domain.MessageSchema, domain.Session{})
	req.NoError(err)

	// Then only the messages come back, decoded
	req.Len(objects, 2)
	messages := lo.Map(objects, func(o domain.Object, _ int) domain.Message { return domain.MessageFromObject(o) })
	req.ElementsMatch([]string{"hello", "hi alice"}, lo.Map(messages, func(m domain.Message, _ int) string {
		return m.Content
	}))
}

func TestObjectStore_Discover_Returns_Objects_Once_Across_Channels(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newObjectStore(t)

	object := message("crossposted", 1)
	object.Channels = []string{"general", "design"}
	_, err := store.Put(ctx, object, alice)
	req.NoError(err)

	objects, err := store.Discover(ctx, []string{"general", "design"}, domain.AnySchema, alice)
	req.NoError(err)
	req.Len(objects, 1)
}

func TestObjectStore_Channel_Names_Do_Not_Overlap(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newObjectStore(t)

	object := message("nested", 1)
	object.Channels = []string{"a:b"}
	_, err := store.Put(ctx, object, alice)
	req.NoError(err)

	objects, err := store.Discover(ctx, []string{"a"}, domain.AnySchema, alice)
	req.NoError(err)
	req.Empty(objects)
}

func TestObjectStore_Overwrite_Requires_Owner(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newObjectStore(t)

	stored, err := store.Put(ctx, message("original", 1), alice)
	req.NoError(err)

	// When another actor overwrites
	stored.Value = domain.Message{Content: "hijacked", Published: 1}.Value()
	_, err = store.Put(ctx, stored, bob)
	req.ErrorIs(err, errors.ErrNotOwner)

	// When the owner overwrites and moves the object
	stored.Value = domain.Message{Content: "edited", Published: 1, Edited: true}.Value()
	stored.Channels = []string{"design"}
	_, err = store.Put(ctx, stored, alice)
	req.NoError(err)

	// Then the old channel index is gone
	objects, err := store.Discover(ctx, []string{"general"}, domain.AnySchema, alice)
	req.NoError(err)
	req.Empty(objects)

	objects, err = store.Discover(ctx, []string{"design"}, domain.AnySchema, alice)
	req.NoError(err)
	req.Len(objects, 1)
	req.Equal(stored.URL, objects[0].URL)
	req.Equal("edited", domain.MessageFromObject(objects[0]).Content)
	req.True(domain.MessageFromObject(objects[0]).Edited)
}

func TestObjectStore_Put_Unknown_Url_Or_Missing_Session(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newObjectStore(t)

	object := message("ghost", 1)
	object.URL = "garden:alice:missing"
	_, err := store.Put(ctx, object, alice)
	req.ErrorIs(err, errors.ErrObjectNotFound)

	_, err = store.Put(ctx, message("anonymous", 1), domain.Session{})
	req.ErrorIs(err, errors.ErrNoSession)

	_, err = store.Put(ctx, domain.Object{Channels: []string{"general"}}, alice)
	req.ErrorIs(err, errors.ErrEmptyValue)
}

func TestObjectStore_Delete(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newObjectStore(t)

	stored, err := store.Put(ctx, message("short lived", 1), alice)
	req.NoError(err)

	_, err = store.Delete(ctx, stored.URL, bob)
	req.ErrorIs(err, errors.ErrNotOwner)

	deleted, err := store.Delete(ctx, stored.URL, alice)
	req.NoError(err)
	req.Equal(stored.URL, deleted.URL)

	objects, err := store.Discover(ctx, []string{"general"}, domain.AnySchema, alice)
	req.NoError(err)
	req.Empty(objects)

	_, err = store.Delete(ctx, stored.URL, alice)
	req.ErrorIs(err, errors.ErrObjectNotFound)
}

func TestObjectStore_Watch(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	store := newObjectStore(t)

	objects, err := store.Watch(ctx, []string{"general"})
	req.NoError(err)

	stored, err := store.Put(ctx, message("live", 1), alice)
	req.NoError(err)
	_, err = store.Delete(ctx, stored.URL, alice)
	req.NoError(err)

	select {
	case o := <-objects:
		req.Equal(stored.URL, o.URL)
		req.False(o.Tombstone)
	case <-ctx.Done():
		req.Fail("watcher did not receive the put")
	}
	select {
	case o := <-objects:
		req.Equal(stored.URL, o.URL)
		req.True(o.Tombstone)
	case <-ctx.Done():
		req.Fail("watcher did not receive the tombstone")
	}

	// Once the context is done the stream is closed
	cancel()
	for range objects {
	}
}
