//go:generate go run go.uber.org/mock/mockgen -source=actor.go -destination=../mocks/mock_actor_repository.go -package=mocks
package repositories

import (
	"chat-garden/errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type IActorRepository interface {
	CreateActor(actor, hashedPassword string) error
	GetActor(actor string) (Actor, error)
}

type ActorRepository struct {
	db *badger.DB
}

func NewActorRepository(db *badger.DB) IActorRepository {
	return &ActorRepository{db: db}
}

// Actor is an account allowed to write to the object store.
type Actor struct {
	ID           string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateActor persists the actor with its already hashed password.
// Fails with ErrUserAlreadyExists when the id is taken.
func (a ActorRepository) CreateActor(actor, hashedPassword string) error {
	record, err := structpb.NewStruct(map[string]any{
		"id":           actor,
		"passwordHash": hashedPassword,
		"createdAt":    time.Now().UTC().Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	data, err := proto.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return a.db.Update(func(txn *badger.Txn) error {
		key := []byte("actor:" + actor)
		if _, err = txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
}

func (a ActorRepository) GetActor(actor string) (Actor, error) {
	var record structpb.Struct

	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("actor:" + actor))
		if err == badger.ErrKeyNotFound {
			return errors.ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return Actor{}, err
	}

	return toActor(&record), nil
}

func toActor(record *structpb.Struct) Actor {
	fields := record.GetFields()
	return Actor{
		ID:           fields["id"].GetStringValue(),
		PasswordHash: fields["passwordHash"].GetStringValue(),
		CreatedAt:    time.Unix(int64(fields["createdAt"].GetNumberValue()), 0).UTC(),
	}
}
