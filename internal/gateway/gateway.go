// ABOUTME: Gateway orchestrator: constructs components and runs the HTTP server.
// ABOUTME: Owns graceful shutdown of the server and the session store.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/conversation"
	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/mode"
	"github.com/parleyhq/parley/internal/relay"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/tts"
)

// Gateway owns the HTTP server and the components behind it.
type Gateway struct {
	config      *config.Config
	store       *session.Store
	engine      *mode.Engine
	llm         *llm.Client
	coordinator *conversation.Coordinator
	registry    *relay.Registry
	wsHandler   *relay.Handler
	httpServer  *http.Server
	logger      *slog.Logger
}

// New builds a Gateway and all its components from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	engine := mode.NewEngine()

	store := session.NewStore(engine, logger, session.Options{
		HistoryLimit: cfg.Sessions.HistoryLimit,
		MaxAge:       cfg.Sessions.MaxAge,
		ReapInterval: cfg.Sessions.ReapInterval,
	})

	var llmOpts []llm.Option
	if cfg.Groq.Model != "" {
		llmOpts = append(llmOpts, llm.WithModel(cfg.Groq.Model))
	}
	if cfg.Groq.BaseURL != "" {
		llmOpts = append(llmOpts, llm.WithBaseURL(cfg.Groq.BaseURL))
	}
	if cfg.Groq.RequestTimeout > 0 {
		llmOpts = append(llmOpts, llm.WithTimeout(cfg.Groq.RequestTimeout))
	}
	client := llm.New(cfg.Groq.APIKey, llmOpts...)

	coordinator := conversation.New(store, engine, client, tts.New(), logger)
	registry := relay.NewRegistry(logger)
	wsHandler := relay.NewHandler(registry, coordinator, originChecker(cfg.Server.AllowedOrigins), logger)

	g := &Gateway{
		config:      cfg,
		store:       store,
		engine:      engine,
		llm:         client,
		coordinator: coordinator,
		registry:    registry,
		wsHandler:   wsHandler,
		logger:      logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/api/session/start", g.handleStartSession)
	mux.HandleFunc("/api/session/", g.handleSessionSubresource)
	mux.Handle("/ws/", wsHandler)

	g.httpServer = &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: corsMiddleware(cfg.Server.AllowedOrigins, mux),
	}

	return g
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails, then shuts down gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("http server listening", "addr", g.config.Server.HTTPAddr)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.shutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// shutdown stops the HTTP server with a fresh timeout context (the run
// context is already cancelled) and releases the session store.
func (g *Gateway) shutdown() error {
	g.logger.Info("shutting down gateway")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := g.httpServer.Shutdown(ctx)
	g.store.Close()

	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// originChecker builds the WebSocket origin check from the allowed list.
// An empty list allows everything.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser client
		}
		return originAllowed(allowed, origin)
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// corsMiddleware answers preflight requests and sets CORS headers for
// allowed origins on the REST surface.
func corsMiddleware(allowed []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (len(allowed) == 0 || originAllowed(allowed, origin)) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
