package storage

import (
	"chat-garden/contract"
	"chat-garden/domain"
	"chat-garden/errors"
	"chat-garden/runtime"
	"chat-garden/sink"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	objectPrefix  = "obj:"
	channelPrefix = "chan:"
)

// ObjectStore is the BadgerDB implementation of the remote object store.
//
// Layout:
//   - "obj:{url}" holds the protobuf encoded object.
//   - "chan:{channel}\x00{url}" is an empty index entry per channel of the object.
//
// The NUL separator keeps "a" from prefix-matching a channel named "a:b".
type ObjectStore struct {
	db        *badger.DB
	log       *slog.Logger
	validator contract.ISchemaValidator
	registry  *runtime.Registry
	now       func() time.Time

	watchBuffer int
}

func NewObjectStore(db *badger.DB, log *slog.Logger,
	validator contract.ISchemaValidator, registry *runtime.Registry) *ObjectStore {
	return &ObjectStore{
		db:        db,
		log:       log,
		validator: validator,
		registry:  registry,
		now:       time.Now,

		watchBuffer: defaultWatchBuffer,
	}
}

const defaultWatchBuffer = 64

// WithWatchBuffer sets how many objects a slow watcher may lag behind before losing some.
func (s *ObjectStore) WithWatchBuffer(size int) *ObjectStore {
	if size > 0 {
		s.watchBuffer = size
	}
	return s
}

func objectKey(url string) []byte {
	return []byte(objectPrefix + url)
}

func channelKey(channel, url string) []byte {
	return []byte(channelPrefix + channel + "\x00" + url)
}

func channelScanPrefix(channel string) []byte {
	return []byte(channelPrefix + channel + "\x00")
}

// Put creates the object, or overwrites it when the URL is already known.
// Overwriting requires the session actor to own the object.
func (s *ObjectStore) Put(ctx context.Context, object domain.Object, session domain.Session) (domain.Object, error) {
	if session.Actor == "" {
		return domain.Object{}, errors.ErrNoSession
	}
	if len(object.Value) == 0 {
		return domain.Object{}, errors.ErrEmptyValue
	}
	if err := ctx.Err(); err != nil {
		return domain.Object{}, err
	}

	object.Actor = session.Actor
	object.LastModified = s.now().UTC().Truncate(time.Millisecond)
	object.Tombstone = false

	err := s.db.Update(func(txn *badger.Txn) error {
		if object.URL == "" {
			object.URL = fmt.Sprintf("garden:%s:%s", session.Actor, uuid.NewString())
		} else {
			existing, err := getObject(txn, object.URL)
			if err != nil {
				return err
			}
			if existing.Actor != session.Actor {
				return errors.ErrNotOwner
			}
			for _, channel := range existing.Channels {
				if err := txn.Delete(channelKey(channel, existing.URL)); err != nil {
					return err
				}
			}
		}

		bytes, err := encodeObject(object)
		if err != nil {
			return err
		}
		if err = txn.Set(objectKey(object.URL), bytes); err != nil {
			return err
		}
		for _, channel := range object.Channels {
			if err = txn.Set(channelKey(channel, object.URL), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Object{}, err
	}

	s.log.Debug("Object stored", "url", object.URL, "actor", object.Actor, "channels", object.Channels)
	if s.registry != nil {
		s.registry.Publish(ctx, object)
	}
	return object, nil
}

// Delete removes an object owned by the session actor and returns it.
func (s *ObjectStore) Delete(ctx context.Context, url string, session domain.Session) (domain.Object, error) {
	if session.Actor == "" {
		return domain.Object{}, errors.ErrNoSession
	}
	if err := ctx.Err(); err != nil {
		return domain.Object{}, err
	}

	var deleted domain.Object
	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := getObject(txn, url)
		if err != nil {
			return err
		}
		if existing.Actor != session.Actor {
			return errors.ErrNotOwner
		}
		for _, channel := range existing.Channels {
			if err = txn.Delete(channelKey(channel, url)); err != nil {
				return err
			}
		}
		deleted = existing
		return txn.Delete(objectKey(url))
	})
	if err != nil {
		return domain.Object{}, err
	}

	s.log.Debug("Object deleted", "url", url, "actor", session.Actor)
	if s.registry != nil {
		tombstone := deleted
		tombstone.Tombstone = true
		s.registry.Publish(ctx, tombstone)
	}
	return deleted, nil
}

// Discover returns the objects posted to any of the channels whose value
// satisfies the schema. Each object is returned once, oldest modification first.
func (s *ObjectStore) Discover(ctx context.Context, channels []string,
	schema domain.Schema, _ domain.Session) ([]domain.Object, error) {
	match, err := s.validator.Compile(schema)
	if err != nil {
		return nil, err
	}

	var objects []domain.Object
	err = s.db.View(func(txn *badger.Txn) error {
		seen := make(map[string]struct{})
		var urls []string

		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for _, channel := range channels {
			prefix := channelScanPrefix(channel)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				url := string(it.Item().Key()[len(prefix):])
				if _, ok := seen[url]; ok {
					continue
				}
				seen[url] = struct{}{}
				urls = append(urls, url)
			}
		}

		for _, url := range urls {
			if err := ctx.Err(); err != nil {
				return err
			}
			object, err := getObject(txn, url)
			if err != nil {
				// A dangling index entry is skipped rather than failing the whole discovery
				s.log.Warn("Index entry without object", "url", url, "error", err)
				continue
			}
			if match(object.Value) {
				objects = append(objects, object)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.Before(objects[j].LastModified)
	})
	return objects, nil
}

// Watch streams every object put to (or deleted from) the channels until ctx is done.
// A watcher that does not keep up loses objects rather than slowing writers down.
func (s *ObjectStore) Watch(ctx context.Context, channels []string) (<-chan domain.Object, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("watching is not enabled on this store")
	}
	buffer := sink.NewChannelSink(s.watchBuffer)
	subscriberID := uuid.NewString()
	s.registry.Subscribe(subscriberID, channels, buffer)

	out := make(chan domain.Object)
	go func() {
		defer close(out)
		defer s.registry.Unsubscribe(subscriberID)
		for {
			select {
			case <-ctx.Done():
				return
			case object := <-buffer.Objects:
				select {
				case out <- object:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func getObject(txn *badger.Txn, url string) (domain.Object, error) {
	item, err := txn.Get(objectKey(url))
	if err == badger.ErrKeyNotFound {
		return domain.Object{}, errors.ErrObjectNotFound
	}
	if err != nil {
		return domain.Object{}, err
	}
	var object domain.Object
	err = item.Value(func(val []byte) error {
		var decodeErr error
		object, decodeErr = decodeObject(val)
		return decodeErr
	})
	return object, err
}
