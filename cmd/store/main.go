package main

import (
	"chat-garden/auth"
	"chat-garden/infrastructure/grpc/server"
	"chat-garden/infrastructure/grpc/wire"
	"chat-garden/infrastructure/schema"
	"chat-garden/infrastructure/storage"
	"chat-garden/internal"
	"chat-garden/observability"
	"chat-garden/repositories"
	"chat-garden/runtime"
	"chat-garden/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the object store server and blocks until a signal or a server failure.
// Deferred cleanups run before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	hashParams, err := config.HashParams()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Store, sessions and telemetry
	registry := runtime.NewRegistry(logger)
	store := storage.NewObjectStore(db, logger, schema.NewCueValidator(), registry).
		WithWatchBuffer(config.WatchBufferSize)
	issuer := auth.NewIssuer(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(repositories.NewActorRepository(db), issuer, auth.NewPasswordHasher(hashParams))
	metrics := observability.NewStoreMetrics()

	debugAddr := fmt.Sprintf("%s:%d", config.Host, config.DebugPort)
	internal.StartDebugServer(ctx, debugAddr, internal.NewDebugMux(db, metrics.Registry), logger)

	// 4. gRPC Server Setup
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}

	methods := auth.Methods{Public: wire.PublicMethods, Anonymous: wire.AnonymousMethods}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(logger),
			metrics.UnaryInterceptor(),
			auth.AuthInterceptor(issuer, methods),
		),
		grpc.ChainStreamInterceptor(
			metrics.StreamInterceptor(),
			auth.StreamAuthInterceptor(issuer, methods),
		),
	)
	server.RegisterObjectStoreServer(s, server.NewObjectStoreServer(store, metrics, logger))
	server.RegisterSessionsServer(s, server.NewSessionsServer(authService))

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting gRPC server", "address", config.Address(), "at", time.Now().UTC())
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("📡 gRPC exposed services", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 5. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// Watch streams only end when their clients leave, so they are cut after a grace period.
	logger.Info("Shutting down gracefully...")
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		s.Stop()
	}
	logger.Info("Store stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}
