// Package server implements the HTTP preview server: plots are uploaded
// as specs, held as live interactive instances, and mutated through
// REST endpoints while every read renders the current state.
//
// The server keeps an in-memory registry of plot handles keyed by id,
// backed by a store.Store for persistence. A plot missing from the
// registry (after a restart, or on another instance sharing a Mongo
// store) is rehydrated from the store on first access.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/forestplot/pkg/cache"
	apperrors "github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/interactive"
	"github.com/matzehuels/forestplot/pkg/store"
)

// shutdownTimeout bounds graceful shutdown once the context is done.
const shutdownTimeout = 10 * time.Second

// Server serves the interactive plot API.
type Server struct {
	addr   string
	store  store.Store
	cache  cache.Cache
	logger *log.Logger

	mu    sync.RWMutex
	plots map[string]*plotEntry
}

// plotEntry pairs a live plot with its per-instance lock, the canonical
// spec hash cache keys build on, and the view state blob shells persist
// through the state endpoints. Plot handles are single-owner, so every
// access goes through mu.
type plotEntry struct {
	mu   sync.Mutex
	plot *interactive.Plot
	hash string
	view interactive.ViewState
}

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Store persists uploaded specs. Defaults to an in-memory store.
	Store store.Store

	// Cache holds rendered documents across requests, keyed by spec
	// and view state. Defaults to no caching.
	Cache cache.Cache

	// Logger receives request and lifecycle logs. Defaults to the
	// standard logger.
	Logger *log.Logger
}

// New creates a server. Nil config fields fall back to defaults.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{
		addr:   cfg.Addr,
		store:  cfg.Store,
		cache:  cfg.Cache,
		logger: cfg.Logger,
		plots:  make(map[string]*plotEntry),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/plots", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{id}.svg", s.handleSVG)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDelete)
			r.Get("/layout", s.handleLayout)
			r.Post("/toggle/{group}", s.handleToggle)
			r.Post("/sort", s.handleSort)
			r.Post("/width", s.handleWidth)
			r.Post("/resize", s.handleResize)
			r.Get("/state", s.handleGetState)
			r.Put("/state", s.handlePutState)
		})
	})

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// register adds a freshly created plot to the registry.
func (s *Server) register(p *interactive.Plot) *plotEntry {
	e := &plotEntry{plot: p, hash: specHash(p.Spec()), view: interactive.DefaultViewState()}
	s.mu.Lock()
	s.plots[p.ID()] = e
	s.mu.Unlock()
	return e
}

// entry returns the live handle for a plot id, rehydrating it from the
// store when the registry doesn't hold it.
func (s *Server) entry(ctx context.Context, id string) (*plotEntry, error) {
	s.mu.RLock()
	e, ok := s.plots[id]
	s.mu.RUnlock()
	if ok {
		return e, nil
	}

	spec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := interactive.New(spec, interactive.WithID(id))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.plots[id]; ok {
		// Lost the rehydration race; keep the registered handle.
		return e, nil
	}
	e = &plotEntry{plot: p, hash: specHash(spec), view: interactive.DefaultViewState()}
	s.plots[id] = e
	return e, nil
}

// drop removes a plot from registry and store.
func (s *Server) drop(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.plots, id)
	s.mu.Unlock()
	return s.store.Delete(ctx, id)
}

// statusFor maps typed error codes onto HTTP status codes.
func statusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeFileNotFound, apperrors.ErrCodePlotNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeMissingField, apperrors.ErrCodeInvalidSpec, apperrors.ErrCodeInvalidColumn,
		apperrors.ErrCodeInvalidTheme, apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeInvalidScale,
		apperrors.ErrCodeInvalidGroup, apperrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}
