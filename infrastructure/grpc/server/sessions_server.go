package server

import (
	"chat-garden/errors"
	"chat-garden/infrastructure/grpc/wire"
	"chat-garden/services"
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// SessionsService is the handler type of the garden.Sessions service.
type SessionsService interface {
	Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type SessionsServer struct {
	authService services.IAuthService
}

// NewSessionsServer creates the gRPC server issuing actor sessions.
func NewSessionsServer(authService services.IAuthService) *SessionsServer {
	return &SessionsServer{authService: authService}
}

func RegisterSessionsServer(s grpc.ServiceRegistrar, srv SessionsService) {
	s.RegisterService(&SessionsServiceDesc, srv)
}

// Register creates the actor and returns its first session token.
func (s *SessionsServer) Register(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor := wire.String(in, "actor")
	token, err := s.authService.Register(actor, wire.String(in, "password"))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return wire.SessionResponse(actor, string(token)), nil
}

// Login verifies credentials and returns a session token.
func (s *SessionsServer) Login(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor := wire.String(in, "actor")
	token, err := s.authService.Login(actor, wire.String(in, "password"))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return wire.SessionResponse(actor, string(token)), nil
}

func registerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionsService).Register(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: wire.RegisterMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionsService).Register(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func loginHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionsService).Login(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: wire.LoginMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionsService).Login(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var SessionsServiceDesc = grpc.ServiceDesc{
	ServiceName: wire.SessionsService,
	HandlerType: (*SessionsService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: registerHandler},
		{MethodName: "Login", Handler: loginHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "garden/sessions",
}
