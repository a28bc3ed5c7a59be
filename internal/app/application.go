package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"

	"mfchat/internal/account"
	"mfchat/internal/api"
	"mfchat/internal/chat"
	"mfchat/internal/config"
	"mfchat/internal/ratelimit"
	"mfchat/internal/store"
	"mfchat/internal/websocket"
	"mfchat/pkg/interfaces"
)

// Application coordinates all system components
// ARCHITECTURAL DISCOVERY: Clean dependency injection pattern with proper
// initialization order: Store → Registry → Tracker → Pipeline → Transport → HTTP
type Application struct {
	config     *config.Config
	sqlite     *store.SQLite // nil for the JSON backend
	accounts   *account.Registry
	tracker    *ratelimit.Tracker
	wsRegistry *websocket.Registry
	service    *chat.Service
	apiServer  *api.Server
	httpServer *http.Server
}

// NewApplication creates an application instance with all components wired
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Validate configuration before component initialization
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{config: cfg}

	// STEP 1: Persistence backend
	var accountStore interfaces.AccountStore
	var messageStore interfaces.MessageStore
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := store.NewSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		app.sqlite = db
		accountStore = db.Accounts()
		messageStore = db.Messages()
	default:
		accountStore = store.NewAccountFile(cfg.Storage.AccountsPath)
		messageStore = store.NewMessageFile(cfg.Storage.MessagesPath)
	}

	// STEP 2: Connection registry doubles as the broadcaster
	app.wsRegistry = websocket.NewRegistry()

	// STEP 3: Account registry and spam tracker
	app.accounts = account.NewRegistry(accountStore, app.wsRegistry, cfg.Chat.Password, cfg.Chat.BanDuration)
	app.tracker = ratelimit.NewTracker(cfg.Chat.SpamWindow, cfg.Chat.SpamThreshold)

	// STEP 4: Chat pipeline
	app.service = chat.NewService(app.accounts, messageStore, app.tracker, app.wsRegistry)

	// STEP 5: Transport handler
	wsHandler := websocket.NewHandler(app.wsRegistry, app.service, websocket.Options{
		PingInterval: cfg.WebSocket.PingInterval,
		ReadTimeout:  cfg.WebSocket.ReadTimeout,
		WriteTimeout: cfg.WebSocket.WriteTimeout,
		WriteBuffer:  cfg.WebSocket.BufferSize,
	})

	// STEP 6: Read-only HTTP API
	app.apiServer = api.NewServer(accountStore, messageStore, app.wsRegistry)

	// STEP 7: Static client hosting — create the directory if missing so a
	// fresh deployment serves an empty site instead of 404ing the root
	if err := os.MkdirAll(cfg.HTTP.PublicDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create public directory: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", app.apiServer)
	mux.Handle("/api/", app.apiServer)
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)
	mux.Handle("/", http.FileServer(http.Dir(cfg.HTTP.PublicDir)))

	// FUNCTIONAL DISCOVERY: CORS wrapper lets a client served from another
	// origin (or file://) reach the API endpoints during development
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	app.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return app, nil
}

// Start begins serving; it returns once the listener is up
func (app *Application) Start(ctx context.Context) error {
	log.Printf("Starting mfchat on %s (storage=%s)", app.httpServer.Addr, app.config.Storage.Backend)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Verify the server came up before declaring success
	select {
	case err := <-serverErrCh:
		return err
	case <-time.After(100 * time.Millisecond):
		log.Printf("mfchat started")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop gracefully shuts the application down
// FUNCTIONAL DISCOVERY: Reverse dependency order — HTTP stops accepting,
// live sockets are closed, then the storage backend is released
func (app *Application) Stop(ctx context.Context) error {
	log.Printf("Shutting down mfchat")

	if err := app.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	app.wsRegistry.Shutdown()

	if app.sqlite != nil {
		if err := app.sqlite.Close(); err != nil {
			log.Printf("Storage shutdown error: %v", err)
		}
	}

	log.Printf("mfchat shutdown complete")
	return nil
}

// Addr returns the server address for external connections
func (app *Application) Addr() string {
	return app.httpServer.Addr
}
