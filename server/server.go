// Package server hosts the search pipeline and the saved-search/
// saved-signal store behind a REST API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/signalscope/pkg/aggregator"
	"github.com/umputun/signalscope/pkg/domain"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/aggregator.go -pkg mocks -skip-ensure -fmt goimports . Aggregator
//go:generate moq -out mocks/search_store.go -pkg mocks -skip-ensure -fmt goimports . SearchStore
//go:generate moq -out mocks/signal_store.go -pkg mocks -skip-ensure -fmt goimports . SignalStore

// Server represents HTTP server instance
type Server struct {
	config      ConfigProvider
	aggregator  Aggregator
	searchStore SearchStore
	signalStore SignalStore
	version     string
	debug       bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Aggregator runs the search pipeline
type Aggregator interface {
	Aggregate(ctx context.Context, req domain.SearchRequest) (*aggregator.Result, error)
}

// SearchStore persists saved searches
type SearchStore interface {
	CreateSearch(ctx context.Context, s *domain.SavedSearch) error
	GetSearches(ctx context.Context, limit int) ([]domain.SavedSearch, error)
	DeleteSearch(ctx context.Context, id int64) error
}

// SignalStore persists saved signals
type SignalStore interface {
	CreateSignal(ctx context.Context, s *domain.SavedSignal) error
	GetSignals(ctx context.Context, limit int) ([]domain.SavedSignal, error)
	DeleteSignal(ctx context.Context, id int64) error
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, agg Aggregator, searches SearchStore, signals SignalStore, version string, debug bool) *Server {
	s := &Server{
		config:      cfg,
		aggregator:  agg,
		searchStore: searches,
		signalStore: signals,
		version:     version,
		debug:       debug,
		router:      routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("signalscope", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("POST /search", s.searchHandler)
		r.HandleFunc("POST /export", s.exportHandler)

		r.HandleFunc("GET /searches", s.listSearchesHandler)
		r.HandleFunc("POST /searches", s.createSearchHandler)
		r.HandleFunc("DELETE /searches/{id}", s.deleteSearchHandler)

		r.HandleFunc("GET /signals", s.listSignalsHandler)
		r.HandleFunc("POST /signals", s.createSignalHandler)
		r.HandleFunc("DELETE /signals/{id}", s.deleteSignalHandler)
	})
}
