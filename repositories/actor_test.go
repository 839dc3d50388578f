package repositories

import (
	"chat-garden/errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestActorRepository_Create_And_Get(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewActorRepository(db)

	req.NoError(repository.CreateActor("alice", "$argon2id$hash"))
	req.ErrorIs(repository.CreateActor("alice", "$argon2id$other"), errors.ErrUserAlreadyExists)

	actor, err := repository.GetActor("alice")
	req.NoError(err)
	req.Equal("alice", actor.ID)
	req.Equal("$argon2id$hash", actor.PasswordHash)
	req.False(actor.CreatedAt.IsZero())

	_, err = repository.GetActor("nobody")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
