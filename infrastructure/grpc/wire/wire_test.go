package wire

import (
	"chat-garden/domain"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestDiscoverRequest_Fields(t *testing.T) {
	req := require.New(t)

	in := DiscoverRequest([]string{"general", "art"}, domain.MessageSchema)

	req.Equal([]string{"general", "art"}, Strings(in, "channels"))
	req.Equal(string(domain.MessageSchema), String(in, "schema"))
	req.Empty(String(in, "missing"))
	req.Empty(Strings(in, "missing"))
}

func TestStrings_SkipsNonStrings(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{"channels": []any{"a", 3.0, true, "b"}})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, Strings(in, "channels"))
}

func TestCredentials_AndSession(t *testing.T) {
	req := require.New(t)

	in := CredentialsRequest("alice", "secret")
	req.Equal("alice", String(in, "actor"))
	req.Equal("secret", String(in, "password"))

	out := SessionResponse("alice", "token")
	req.Equal("token", String(out, "token"))
}
