//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-garden/domain"
	"context"
)

// IObjectStore is the remote object store the chat is built on.
// Writes are attributed to the session actor; only the owner may overwrite or delete an object.
type IObjectStore interface {
	Put(ctx context.Context, object domain.Object, session domain.Session) (domain.Object, error)
	Delete(ctx context.Context, url string, session domain.Session) (domain.Object, error)
	Discover(ctx context.Context, channels []string, schema domain.Schema, session domain.Session) ([]domain.Object, error)
}

// IObjectWatcher streams objects put to or deleted from channels until ctx is done.
type IObjectWatcher interface {
	Watch(ctx context.Context, channels []string) (<-chan domain.Object, error)
}

// IKeyValueStore is the local storage small auxiliary records live in.
type IKeyValueStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// ISchemaValidator decides whether an object value satisfies a discover schema.
type ISchemaValidator interface {
	Compile(schema domain.Schema) (func(value map[string]any) bool, error)
}

// IMessageIndex is a full-text index over the messages a client has seen.
type IMessageIndex interface {
	Index(channel string, messages ...domain.Message) error
	Delete(key string) error
	Search(terms string, channel string, limit int) ([]domain.Message, error)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer func(prompt string) bool

// EventSink receives objects published to a watched channel.
type EventSink interface {
	Consume(ctx context.Context, object domain.Object) error
}
