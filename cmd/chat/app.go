package main

import (
	"chat-garden/contract"
	"chat-garden/domain"
	"chat-garden/infrastructure/grpc/client"
	"chat-garden/infrastructure/schema"
	"chat-garden/infrastructure/search"
	"chat-garden/infrastructure/storage"
	"chat-garden/internal"
	"chat-garden/moderation"
	"chat-garden/runtime"
	"chat-garden/services"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// objectBackend is a store the CLI can also follow live.
type objectBackend interface {
	contract.IObjectStore
	contract.IObjectWatcher
}

// App holds everything a command needs, opened once per invocation.
type App struct {
	config Config
	log    *slog.Logger

	db    *badger.DB
	conn  *grpc.ClientConn
	index *search.MessageIndex

	store    objectBackend
	sessions *client.SessionsClient
	prefs    *storage.Preferences
	notifier *services.Notifier

	communities *services.CommunityService
	messages    *services.MessageService
	tags        *services.TagService
	profiles    *services.ProfileService
}

// welcome is shown at the top of the default community.
var welcome = map[string][]domain.Message{
	domain.DefaultCommunityID: {{ID: "welcome", Content: "Welcome to the garden, say hi!"}},
}

func OpenApp(config Config) (*App, error) {
	log := logs.GetLoggerFromString(config.LogLevel)
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	app := &App{config: config, log: log}
	db, err := badger.Open(badger.DefaultOptions(filepath.Join(config.DataDir, "local")).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("local storage opening failed: %w", err)
	}
	app.db = db

	if config.Embedded() {
		app.store = storage.NewObjectStore(db, log, schema.NewCueValidator(), runtime.NewRegistry(log))
	} else {
		conn, err := grpc.NewClient(config.StoreAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("could not connect to store at %s: %w", config.StoreAddr, err)
		}
		app.conn = conn
		app.store = client.NewObjectStoreClient(conn, log)
		app.sessions = client.NewSessionsClient(conn)
	}

	index, err := search.OpenMessageIndex(filepath.Join(config.DataDir, "index"), log)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("search index opening failed: %w", err)
	}
	app.index = index

	char, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	moderator, err := moderation.NewModerator(internal.SplitWords(config.CensoredWords), char, log)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.prefs = storage.NewPreferences(storage.NewKeyValueStore(db), log)
	app.notifier = services.NewNotifier(log, config.NoticeTTL)
	app.communities = services.NewCommunityService(app.prefs, app.notifier, log)
	if _, err = app.communities.Select(app.prefs.SelectedCommunity()); err != nil {
		log.Warn("Remembered community is gone", "id", app.prefs.SelectedCommunity())
	}
	app.messages = services.NewMessageService(app.store, index, moderator, app.notifier, log, welcome)
	app.tags = services.NewTagService(app.store, app.prefs, app.communities, app.notifier, log)
	app.profiles = services.NewProfileService(app.store, app.notifier, log)
	return app, nil
}

// Session returns the remembered session, or the CHAT_ACTOR one on an embedded store.
func (a *App) Session() domain.Session {
	if a.config.Embedded() && a.config.Actor != "" {
		return domain.Session{Actor: a.config.Actor}
	}
	return a.prefs.Session()
}

func (a *App) RequireSession() (domain.Session, error) {
	session := a.Session()
	if session.Actor == "" {
		return domain.Session{}, fmt.Errorf("not logged in, run `chat login <actor>` first")
	}
	return session, nil
}

// Workspace opens the view state on the selected community.
func (a *App) Workspace(ctx context.Context) (*services.Workspace, error) {
	workspace := services.NewWorkspace(a.Session(), a.communities, a.messages, a.tags, a.notifier, a.log)
	if err := workspace.SelectCommunity(ctx, a.communities.Selected().ID); err != nil {
		return nil, err
	}
	return workspace, nil
}

// Close persists the selection and releases storage. It is safe to call twice.
func (a *App) Close() error {
	if a.communities != nil {
		a.prefs.SaveSelectedCommunity(a.communities.Selected().ID)
		a.communities = nil
	}
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			a.log.Error("Failed to close search index", "error", err)
		}
		a.index = nil
	}
	if a.conn != nil {
		_ = a.conn.Close()
		a.conn = nil
	}
	if a.db != nil {
		err := a.db.Close()
		a.db = nil
		return err
	}
	return nil
}
