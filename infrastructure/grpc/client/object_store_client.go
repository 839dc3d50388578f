package client

import (
	"chat-garden/domain"
	"chat-garden/errors"
	"chat-garden/infrastructure/grpc/wire"
	"chat-garden/infrastructure/storage"
	"context"
	stderrors "errors"
	"io"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	discoverStream = &grpc.StreamDesc{StreamName: "Discover", ServerStreams: true}
	watchStream    = &grpc.StreamDesc{StreamName: "Watch", ServerStreams: true}
)

// ObjectStoreClient reaches a remote object store over gRPC.
// Domain errors raised by the server are restored on this side.
type ObjectStoreClient struct {
	conn grpc.ClientConnInterface
	log  *slog.Logger
}

func NewObjectStoreClient(conn grpc.ClientConnInterface, log *slog.Logger) *ObjectStoreClient {
	return &ObjectStoreClient{conn: conn, log: log}
}

func withSession(ctx context.Context, session domain.Session) context.Context {
	if session.Token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+session.Token)
}

func (c *ObjectStoreClient) Put(ctx context.Context, object domain.Object, session domain.Session) (domain.Object, error) {
	in, err := storage.ObjectToStruct(object)
	if err != nil {
		return domain.Object{}, err
	}
	out := new(structpb.Struct)
	if err = c.conn.Invoke(withSession(ctx, session), wire.PutMethod, in, out); err != nil {
		return domain.Object{}, errors.FromGRPCError(err)
	}
	return storage.ObjectFromStruct(out), nil
}

func (c *ObjectStoreClient) Delete(ctx context.Context, url string, session domain.Session) (domain.Object, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(withSession(ctx, session), wire.DeleteMethod, wire.DeleteRequest(url), out); err != nil {
		return domain.Object{}, errors.FromGRPCError(err)
	}
	return storage.ObjectFromStruct(out), nil
}

// Discover drains the server stream into a slice.
func (c *ObjectStoreClient) Discover(ctx context.Context, channels []string,
	schema domain.Schema, session domain.Session) ([]domain.Object, error) {
	stream, err := c.open(withSession(ctx, session), discoverStream, wire.DiscoverMethod,
		wire.DiscoverRequest(channels, schema))
	if err != nil {
		return nil, err
	}

	var objects []domain.Object
	for {
		out := new(structpb.Struct)
		err = stream.RecvMsg(out)
		if stderrors.Is(err, io.EOF) {
			return objects, nil
		}
		if err != nil {
			return nil, errors.FromGRPCError(err)
		}
		objects = append(objects, storage.ObjectFromStruct(out))
	}
}

// Watch relays the server stream until ctx is done or the stream breaks.
func (c *ObjectStoreClient) Watch(ctx context.Context, channels []string) (<-chan domain.Object, error) {
	stream, err := c.open(ctx, watchStream, wire.WatchMethod, wire.WatchRequest(channels))
	if err != nil {
		return nil, err
	}

	objects := make(chan domain.Object)
	go func() {
		defer close(objects)
		for {
			out := new(structpb.Struct)
			if err := stream.RecvMsg(out); err != nil {
				if ctx.Err() == nil && !stderrors.Is(err, io.EOF) {
					c.log.Warn("Watch stream ended", "channels", channels, "error", err)
				}
				return
			}
			select {
			case objects <- storage.ObjectFromStruct(out):
			case <-ctx.Done():
				return
			}
		}
	}()
	return objects, nil
}

func (c *ObjectStoreClient) open(ctx context.Context, desc *grpc.StreamDesc,
	method string, in *structpb.Struct) (grpc.ClientStream, error) {
	stream, err := c.conn.NewStream(ctx, desc, method)
	if err != nil {
		return nil, errors.FromGRPCError(err)
	}
	if err = stream.SendMsg(in); err != nil {
		return nil, errors.FromGRPCError(err)
	}
	if err = stream.CloseSend(); err != nil {
		return nil, errors.FromGRPCError(err)
	}
	return stream, nil
}
