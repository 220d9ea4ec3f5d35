// Package server exposes a paper trading account over HTTP and WebSocket.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"go.uber.org/zap"
)

// Engine is the account surface the API drives. *sim.Engine implements it.
type Engine interface {
	broker.Broker
	Summary() sim.Summary
	Transactions() []journal.Transaction
	Subscribe() (<-chan sim.Event, sim.CancelFunc)
}

// Catalog is the instrument listing. *catalog.Store implements it.
type Catalog interface {
	Snapshot() *market.Snapshot
	Refresh(ctx context.Context) (*market.Snapshot, error)
}

// Config holds server configuration
type Config struct {
	Port    int
	Log     *zap.Logger
	Engine  Engine
	Catalog Catalog
}

type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     *zap.Logger
	engine  Engine
	catalog Catalog
	port    int
}

func New(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		router:  chi.NewRouter(),
		log:     log.With(zap.String("component", "server")),
		engine:  cfg.Engine,
		catalog: cfg.Catalog,
		port:    cfg.Port,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/stocks", func(r chi.Router) {
			r.Get("/", s.handleStocks)
			r.Post("/refresh", s.handleRefresh)
		})
		r.Get("/account", s.handleAccount)
		r.Get("/positions", s.handlePositions)
		r.Get("/transactions", s.handleTransactions)
		r.Post("/orders", s.handleOrder)
		r.Get("/events", s.handleEvents)
	})
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", zap.Int("port", s.port))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
