// Package server assembles the HTTP layer: it opens the session
// database, builds the four divination engines against the provider
// registry, and serves the endpoint registry's routes.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jhsu-tw/tianji/internal/almanac"
	"github.com/jhsu-tw/tianji/internal/api"
	"github.com/jhsu-tw/tianji/internal/config"
	"github.com/jhsu-tw/tianji/internal/engine"
	"github.com/jhsu-tw/tianji/internal/home"
	"github.com/jhsu-tw/tianji/internal/providers"
	"github.com/jhsu-tw/tianji/internal/server/endpoints"
	"github.com/jhsu-tw/tianji/internal/session"
	"github.com/jhsu-tw/tianji/internal/svcctx"
)

// Server is the main tianji HTTP server. It owns the SQLite database
// lifecycle, opening it on Start and closing it on shutdown.
type Server struct {
	httpServer *http.Server
	registry   *providers.Registry
	configMgr  *config.Manager
	logger     *slog.Logger
	homeDir    *home.Dir

	dbPath string
	db     *sql.DB

	// services holds all core services for context enrichment.
	// It is nil until Start has opened the database.
	services *svcctx.Services

	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 0.0.0.0)
	Host string
	// Port is the port to listen on (default: 8080)
	Port int
	// DatabasePath is where the SQLite database lives.
	DatabasePath string
	// ConfigManager provides configuration with hot-reload support.
	ConfigManager *config.Manager
	// Home is the tianji home directory.
	Home *home.Dir
	// Logger is the structured logger to use.
	Logger *slog.Logger
	// Version is reported by the health and index endpoints.
	Version string
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DatabasePath == "" {
		if cfg.Home == nil {
			return nil, fmt.Errorf("either DatabasePath or Home must be set")
		}
		cfg.DatabasePath = cfg.Home.DatabasePath()
	}

	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)

	if cfg.ConfigManager != nil {
		registry.Reload(cfg.ConfigManager.Get().ToProviderRegistryConfig())

		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	}

	s := &Server{
		registry:  registry,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		homeDir:   cfg.Home,
		dbPath:    cfg.DatabasePath,
	}

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{Version: cfg.Version}) {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler: s.withServices(mux),
		// Chat handlers wait on the upstream LLM, so the write timeout
		// stays well above a single completion's worst case.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start opens the database, wires the services, and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	cfg := config.DefaultConfig()
	if s.configMgr != nil {
		cfg = s.configMgr.Get()
	}

	s.logger.Info("opening session database", "path", s.dbPath)
	db, err := session.OpenDB(s.dbPath)
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	ttl := time.Duration(cfg.Session.TTLSeconds) * time.Second
	store, err := session.NewSQLiteStore(db, ttl)
	if err != nil {
		_ = s.shutdown()
		return fmt.Errorf("failed to create session store: %w", err)
	}

	almanacStore, err := almanac.NewSQLiteMonthStore(db)
	if err != nil {
		_ = s.shutdown()
		return fmt.Errorf("failed to create almanac store: %w", err)
	}

	engines := engine.Modules(engine.Deps{
		LLM:     s.registry.Dynamic(),
		Almanac: almanacStore,
		Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:  s.logger,
		Memory: engine.MemoryConfig{
			MaxTurns:    cfg.Memory.MaxTurns,
			ContextSize: cfg.Memory.ContextSize,
		},
	})

	s.services = &svcctx.Services{
		Store:    store,
		Engines:  engines,
		Registry: s.registry,
		Almanac:  almanacStore,
		Config:   s.configMgr,
		Logger:   s.logger,
		Home:     s.homeDir,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server and database.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		}
		s.db = nil
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until Start has wired the services.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
