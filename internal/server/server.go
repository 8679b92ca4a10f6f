// Package server provides the HTTP API for baheth.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/baheth/internal/config"
	"github.com/hyperjump/baheth/internal/indexer"
	"github.com/hyperjump/baheth/internal/search"
	"github.com/hyperjump/baheth/internal/storage"
)

// requestTimeout bounds every request, including the ranking pipeline.
const requestTimeout = 60 * time.Second

// WatchService is the part of the directory watcher the API exposes.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
}

// Server is the HTTP server for the baheth API.
type Server struct {
	engine  *search.Engine
	indexer *indexer.Indexer
	storage storage.Storage
	config  *config.Config
	watch   WatchService
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	idx *indexer.Indexer,
	storage storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:  engine,
		indexer: idx,
		storage: storage,
		config:  cfg,
		logger:  logger,
	}
}

// WithWatch exposes a running watcher through the watch endpoints.
func (s *Server) WithWatch(w WatchService) *Server {
	s.watch = w
	return s
}

// Router builds the chi router with the middleware stack and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearchGet)
		r.Post("/search", s.handleSearchPost)

		r.Get("/snippets", s.handleListSnippets)
		r.Post("/snippets", s.handleIndexSnippets)
		r.Get("/snippets/{id}", s.handleGetSnippet)

		r.Get("/files", s.handleListFiles)
		r.Delete("/files/{id}", s.handleDeleteFile)

		r.Get("/status", s.handleStatus)

		r.Get("/watch/directories", s.handleWatchDirectoriesList)
		r.Post("/watch/directories", s.handleWatchDirectoriesAdd)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops. A server stopped
// through Stop returns nil.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
