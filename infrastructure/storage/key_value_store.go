package storage

import (
	"github.com/dgraph-io/badger/v4"
)

const keyValuePrefix = "kv:"

// KeyValueStore is the local storage of the client, kept in its own BadgerDB.
type KeyValueStore struct {
	db *badger.DB
}

func NewKeyValueStore(db *badger.DB) *KeyValueStore {
	return &KeyValueStore{db: db}
}

// Get returns nil without error when the key was never written.
func (k KeyValueStore) Get(key string) ([]byte, error) {
	var value []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyValuePrefix + key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

func (k KeyValueStore) Set(key string, value []byte) error {
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyValuePrefix+key), value)
	})
}
