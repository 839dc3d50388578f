package server

import (
	"chat-garden/auth"
	"chat-garden/contract"
	"chat-garden/domain"
	"chat-garden/errors"
	"chat-garden/infrastructure/grpc/wire"
	"chat-garden/infrastructure/storage"
	"chat-garden/observability"
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ObjectBackend is what the server exposes: a store that can also be watched.
type ObjectBackend interface {
	contract.IObjectStore
	contract.IObjectWatcher
}

// ObjectStoreService is the handler type of the garden.ObjectStore service.
type ObjectStoreService interface {
	Put(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Discover(in *structpb.Struct, stream grpc.ServerStream) error
	Watch(in *structpb.Struct, stream grpc.ServerStream) error
}

type ObjectStoreServer struct {
	store   ObjectBackend
	metrics *observability.StoreMetrics
	log     *slog.Logger
}

func NewObjectStoreServer(store ObjectBackend, metrics *observability.StoreMetrics, log *slog.Logger) *ObjectStoreServer {
	return &ObjectStoreServer{store: store, metrics: metrics, log: log}
}

func RegisterObjectStoreServer(s grpc.ServiceRegistrar, srv ObjectStoreService) {
	s.RegisterService(&ObjectStoreServiceDesc, srv)
}

func sessionFrom(ctx context.Context) domain.Session {
	actor, _ := auth.ActorFromContext(ctx)
	return domain.Session{Actor: actor}
}

// Put stores the object under the authenticated actor.
func (s *ObjectStoreServer) Put(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	stored, err := s.store.Put(ctx, storage.ObjectFromStruct(in), sessionFrom(ctx))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	s.metrics.ObjectWritten("put")
	return toStruct(stored)
}

func (s *ObjectStoreServer) Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	deleted, err := s.store.Delete(ctx, wire.String(in, "url"), sessionFrom(ctx))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	s.metrics.ObjectWritten("delete")
	return toStruct(deleted)
}

// Discover streams the matching objects, oldest first, then ends the stream.
func (s *ObjectStoreServer) Discover(in *structpb.Struct, stream grpc.ServerStream) error {
	ctx := stream.Context()
	objects, err := s.store.Discover(ctx, wire.Strings(in, "channels"),
		domain.Schema(wire.String(in, "schema")), sessionFrom(ctx))
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	for _, object := range objects {
		out, err := toStruct(object)
		if err != nil {
			return err
		}
		if err = stream.SendMsg(out); err != nil {
			return err
		}
	}
	return nil
}

// Watch blocks until the client goes away, pushing every put and tombstone of the channels.
func (s *ObjectStoreServer) Watch(in *structpb.Struct, stream grpc.ServerStream) error {
	ctx := stream.Context()
	channels := wire.Strings(in, "channels")
	if len(channels) == 0 {
		return status.Error(codes.InvalidArgument, "at least one channel is required")
	}

	objects, err := s.store.Watch(ctx, channels)
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	s.metrics.WatchStarted()
	defer s.metrics.WatchEnded()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Watcher disconnected", "channels", channels)
			return nil
		case object, ok := <-objects:
			if !ok {
				return nil
			}
			out, err := toStruct(object)
			if err != nil {
				return err
			}
			if err = stream.SendMsg(out); err != nil {
				s.log.Error("failed to push object to stream",
					"channels", channels,
					"url", object.URL,
					"error", err)
				return err
			}
		}
	}
}

func toStruct(object domain.Object) (*structpb.Struct, error) {
	out, err := storage.ObjectToStruct(object)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func putHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ObjectStoreService).Put(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: wire.PutMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ObjectStoreService).Put(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ObjectStoreService).Delete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: wire.DeleteMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ObjectStoreService).Delete(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func discoverHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ObjectStoreService).Discover(in, stream)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ObjectStoreService).Watch(in, stream)
}

var ObjectStoreServiceDesc = grpc.ServiceDesc{
	ServiceName: wire.ObjectStoreService,
	HandlerType: (*ObjectStoreService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Put", Handler: putHandler},
		{MethodName: "Delete", Handler: deleteHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Discover", Handler: discoverHandler, ServerStreams: true},
		{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
	},
	Metadata: "garden/object_store",
}
