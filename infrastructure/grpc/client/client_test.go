package client_test

import (
	"chat-garden/auth"
	"chat-garden/domain"
	"chat-garden/errors"
	"chat-garden/infrastructure/grpc/client"
	"chat-garden/infrastructure/grpc/server"
	"chat-garden/infrastructure/grpc/wire"
	"chat-garden/infrastructure/schema"
	"chat-garden/infrastructure/storage"
	"chat-garden/observability"
	"chat-garden/repositories"
	"chat-garden/runtime"
	"chat-garden/services"
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const password = "ComplexPass123!"

// Cheap enough to keep the suite fast.
var testHashParams = auth.HashParams{MemoryKiB: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type TransportSuite struct {
	suite.Suite

	db       *badger.DB
	registry *runtime.Registry
	metrics  *observability.StoreMetrics
	srv      *grpc.Server
	conn     *grpc.ClientConn

	store    *client.ObjectStoreClient
	sessions *client.SessionsClient
	alice    domain.Session
	bob      domain.Session
}

func TestTransportSuite(t *testing.T) {
	suite.Run(t, new(TransportSuite))
}

func (s *TransportSuite) SetupTest() {
	log := slog.Default()
	db, err := badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.db = db

	s.registry = runtime.NewRegistry(log)
	s.metrics = observability.NewStoreMetrics()
	store := storage.NewObjectStore(db, log, schema.NewCueValidator(), s.registry)
	issuer := auth.NewIssuer("test-secret", time.Hour)
	methods := auth.Methods{Public: wire.PublicMethods, Anonymous: wire.AnonymousMethods}

	s.srv = grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.metrics.UnaryInterceptor(), auth.AuthInterceptor(issuer, methods)),
		grpc.ChainStreamInterceptor(s.metrics.StreamInterceptor(), auth.StreamAuthInterceptor(issuer, methods)),
	)
	server.RegisterObjectStoreServer(s.srv, server.NewObjectStoreServer(store, s.metrics, log))
	server.RegisterSessionsServer(s.srv, server.NewSessionsServer(
		services.NewAuthService(repositories.NewActorRepository(db), issuer, auth.NewPasswordHasher(testHashParams))))

	listener := bufconn.Listen(1024 * 1024)
	go func() { _ = s.srv.Serve(listener) }()

	s.conn, err = grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)

	s.store = client.NewObjectStoreClient(s.conn, log)
	s.sessions = client.NewSessionsClient(s.conn)

	ctx := context.Background()
	s.alice, err = s.sessions.Register(ctx, "alice", password)
	s.Require().NoError(err)
	s.bob, err = s.sessions.Register(ctx, "bob", password)
	s.Require().NoError(err)
}

func (s *TransportSuite) TearDownTest() {
	_ = s.conn.Close()
	s.srv.Stop()
	_ = s.db.Close()
}

func message(content string, published int64) domain.Object {
	return domain.Object{
		Channels: []string{"general"},
		Value:    domain.Message{Content: content, Published: published}.Value(),
	}
}

func (s *TransportSuite) TestSessions() {
	ctx := context.Background()

	s.Equal("alice", s.alice.Actor)
	s.NotEmpty(s.alice.Token)

	session, err := s.sessions.Login(ctx, "alice", password)
	s.Require().NoError(err)
	s.Equal("alice", session.Actor)

	_, err = s.sessions.Login(ctx, "alice", "WrongPass123!!")
	s.ErrorIs(err, errors.ErrInvalidCredentials)

	_, err = s.sessions.Register(ctx, "alice", password)
	s.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func (s *TransportSuite) TestPut_Discover_Delete() {
	ctx := context.Background()

	stored, err := s.store.Put(ctx, message("hello", 1), s.alice)
	s.Require().NoError(err)
	s.Equal("alice", stored.Actor)
	s.NotEmpty(stored.URL)
	s.False(stored.LastModified.IsZero())

	// Anyone may discover, even without a session
	objects, err := s.store.Discover(ctx, []string{"general"}, domain.MessageSchema, domain.Session{})
	s.Require().NoError(err)
	s.Require().Len(objects, 1)
	s.Equal(stored.URL, objects[0].URL)
	s.Equal("hello", domain.MessageFromObject(objects[0]).Content)

	// Bob cannot remove what alice wrote
	_, err = s.store.Delete(ctx, stored.URL, s.bob)
	s.ErrorIs(err, errors.ErrNotOwner)

	deleted, err := s.store.Delete(ctx, stored.URL, s.alice)
	s.Require().NoError(err)
	s.Equal(stored.URL, deleted.URL)

	_, err = s.store.Delete(ctx, stored.URL, s.alice)
	s.ErrorIs(err, errors.ErrObjectNotFound)

	objects, err = s.store.Discover(ctx, []string{"general"}, domain.MessageSchema, s.alice)
	s.Require().NoError(err)
	s.Empty(objects)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Requests(wire.PutMethod, codes.OK.String())))
}

func (s *TransportSuite) TestPut_RequiresToken() {
	_, err := s.store.Put(context.Background(), message("hello", 1), domain.Session{Actor: "alice"})
	s.Equal(codes.Unauthenticated, status.Code(err))

	_, err = s.store.Put(context.Background(), message("hello", 1),
		domain.Session{Actor: "alice", Token: "forged"})
	s.Equal(codes.Unauthenticated, status.Code(err))
}

func (s *TransportSuite) TestDiscover_InvalidSchema() {
	_, err := s.store.Discover(context.Background(), []string{"general"}, "{", s.alice)
	s.ErrorIs(err, errors.ErrInvalidSchema)
}

func (s *TransportSuite) TestWatch() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	objects, err := s.store.Watch(ctx, []string{"general"})
	s.Require().NoError(err)
	s.Require().Eventually(func() bool {
		return len(s.registry.GetSinksForChannels([]string{"general"})) == 1
	}, time.Second, 10*time.Millisecond)

	stored, err := s.store.Put(ctx, message("live", 1), s.bob)
	s.Require().NoError(err)
	_, err = s.store.Delete(ctx, stored.URL, s.bob)
	s.Require().NoError(err)

	select {
	case object := <-objects:
		s.Equal(stored.URL, object.URL)
		s.False(object.Tombstone)
	case <-time.After(time.Second):
		s.FailNow("put not watched")
	}
	select {
	case object := <-objects:
		s.Equal(stored.URL, object.URL)
		s.True(object.Tombstone)
	case <-time.After(time.Second):
		s.FailNow("tombstone not watched")
	}

	cancel()
	s.Eventually(func() bool {
		_, open := <-objects
		return !open
	}, time.Second, 10*time.Millisecond)
}
