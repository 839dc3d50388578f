package services

import (
	"chat-garden/domain"
	"chat-garden/infrastructure/schema"
	"chat-garden/infrastructure/storage"
	"chat-garden/runtime"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Session{Actor: "alice"}
	bob   = domain.Session{Actor: "bob"}
)

// memoryStore is an in-memory local storage.
type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}}
}

func (m *memoryStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func newPreferences(store *memoryStore) *storage.Preferences {
	return storage.NewPreferences(store, slog.Default())
}

func newNotifier() *Notifier {
	return NewNotifier(slog.Default(), time.Minute)
}

// newObjectStore opens a real object store on a temporary badger directory.
func newObjectStore(t *testing.T) *storage.ObjectStore {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	log := slog.Default()
	return storage.NewObjectStore(db, log, schema.NewCueValidator(), runtime.NewRegistry(log))
}
