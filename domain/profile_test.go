package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShortenActor(t *testing.T) {
	req := require.New(t)

	req.Equal("alice", ShortenActor("https://garden.example/actors/alice"))
	req.Equal("bob", ShortenActor("bob"))
	req.Equal("https://garden.example/", ShortenActor("https://garden.example/"))
	req.Equal("Unknown User", ShortenActor(""))
}

func TestDisplayName_And_Initial(t *testing.T) {
	req := require.New(t)

	req.Equal("alice", DisplayName(nil, "https://garden.example/alice"))
	req.Equal("Alice Liddell", DisplayName(&Profile{Name: "Alice Liddell"}, "alice"))
	req.Equal("A", Initial(nil, "alice"))
	req.Equal("É", Initial(&Profile{Name: "élodie"}, "x"))
}

func TestNewSchema(t *testing.T) {
	req := require.New(t)

	schema := NewSchema(
		SchemaField{Name: "describes", Const: "alice"},
		SchemaField{Name: "published", Kind: "number"},
		SchemaField{Name: "edited", Const: true},
		SchemaField{Name: "anything"},
	)

	req.Equal(Schema(`{"describes"!: "alice", "published"!: number, "edited"!: true, "anything"!: _}`), schema)
}

func TestNewSchema_Escapes_Strings(t *testing.T) {
	schema := NewSchema(SchemaField{Name: "tag", Const: "a\x01b\n\"q\"\\"})

	require.Equal(t, Schema(`{"tag"!: "a\u0001b\n\"q\"\\"}`), schema)
}
