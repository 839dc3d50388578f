package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const ActorKey contextKey = "actor"

// Methods policy for the interceptors, keyed by full gRPC method name.
// Public methods skip authentication entirely; anonymous methods accept
// callers without a token but still resolve the actor of a valid one.
type Methods struct {
	Public    []string
	Anonymous []string
}

func (m Methods) contains(list []string, method string) bool {
	for _, candidate := range list {
		if candidate == method {
			return true
		}
	}
	return false
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(ActorKey).(string)
	return actor, ok && actor != ""
}

// AuthInterceptor handles JWT validation for incoming unary gRPC calls.
func AuthInterceptor(issuer *Issuer, methods Methods) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		newCtx, err := authenticate(ctx, issuer, methods, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(newCtx, req)
	}
}

// StreamAuthInterceptor is the streaming counterpart of AuthInterceptor.
func StreamAuthInterceptor(issuer *Issuer, methods Methods) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream,
		info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		newCtx, err := authenticate(ss.Context(), issuer, methods, info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &authenticatedStream{ServerStream: ss, ctx: newCtx})
	}
}

func authenticate(ctx context.Context, issuer *Issuer, methods Methods, method string) (context.Context, error) {
	if methods.contains(methods.Public, method) {
		return ctx, nil
	}
	anonymous := methods.contains(methods.Anonymous, method)

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		if anonymous {
			return ctx, nil
		}
		return nil, status.Error(codes.Unauthenticated, "metadata is missing")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		if anonymous {
			return ctx, nil
		}
		return nil, status.Error(codes.Unauthenticated, "authorization token is missing")
	}

	// Expecting the standard "Bearer <token>" format
	tokenStr := strings.TrimPrefix(values[0], "Bearer ")
	claims, err := issuer.ValidateToken(tokenStr)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
	}
	return context.WithValue(ctx, ActorKey, claims.Actor), nil
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}
