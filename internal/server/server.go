package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/texqa/aql-extractor/internal/archive"
	"github.com/texqa/aql-extractor/internal/common"
	"github.com/texqa/aql-extractor/internal/export"
	"github.com/texqa/aql-extractor/internal/pipeline"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	proc     *pipeline.Processor
	exporter *export.Writer
	store    *archive.Store // nil when archiving is disabled
	schema   []string

	snippetLimit   int
	maxUploadBytes int64
}

// New builds and wires all routes.
func New(cfg common.ServerConfig, proc *pipeline.Processor, exporter *export.Writer, store *archive.Store, schema []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:         logger,
		proc:           proc,
		exporter:       exporter,
		store:          store,
		schema:         schema,
		snippetLimit:   cfg.SnippetLimit,
		maxUploadBytes: int64(cfg.MaxUploadMB) << 20,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(api chi.Router) {
		api.Get("/healthz", s.handleHealthz)
		api.Get("/schema", s.handleSchema)
		api.Post("/extract", s.handleExtract)
		api.Post("/extract/xlsx", s.handleExtractXLSX)
		api.Get("/outcomes", s.handleOutcomes)
	})

	s.httpServer = &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	return s
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("server.listen", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server.shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
