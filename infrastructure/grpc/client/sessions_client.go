package client

import (
	"chat-garden/domain"
	"chat-garden/errors"
	"chat-garden/infrastructure/grpc/wire"
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type SessionsClient struct {
	conn grpc.ClientConnInterface
}

func NewSessionsClient(conn grpc.ClientConnInterface) *SessionsClient {
	return &SessionsClient{conn: conn}
}

// Register creates the actor on the server and returns its session.
func (c *SessionsClient) Register(ctx context.Context, actor, password string) (domain.Session, error) {
	return c.call(ctx, wire.RegisterMethod, actor, password)
}

func (c *SessionsClient) Login(ctx context.Context, actor, password string) (domain.Session, error) {
	return c.call(ctx, wire.LoginMethod, actor, password)
}

func (c *SessionsClient) call(ctx context.Context, method, actor, password string) (domain.Session, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, wire.CredentialsRequest(actor, password), out); err != nil {
		return domain.Session{}, errors.FromGRPCError(err)
	}
	return domain.Session{Actor: wire.String(out, "actor"), Token: wire.String(out, "token")}, nil
}
