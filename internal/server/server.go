// Package server wires the router, middleware, handlers, and storage
// together, and owns startup and graceful shutdown. main.go stays minimal;
// this is the composition root.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/snippetify/snippetify/internal/auth"
	"github.com/snippetify/snippetify/internal/config"
	"github.com/snippetify/snippetify/internal/handler"
	"github.com/snippetify/snippetify/internal/middleware"
	sqliteRepo "github.com/snippetify/snippetify/internal/repository/sqlite"
	"github.com/snippetify/snippetify/internal/service"
)

// Server holds the router and the resources it owns. The database handle is
// closed during shutdown so the WAL is flushed and the file lock released.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: store → services → handlers →
// routes. Each layer receives only the interfaces it needs.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes registers middleware and the API route table.
//
// GET    /api/health              liveness
// GET    /api/snippets            list own snippets (auth required)
// GET    /api/snippets/{id}       fetch one (auth optional; owner or public)
// POST   /api/snippets            create (auth required)
// PUT    /api/snippets/{id}       partial update (auth required, owner)
// DELETE /api/snippets/{id}       delete (auth required, owner)
// POST   /api/snippets/{id}/like  toggle like (auth required)
// GET    /api/collections         list own collections (auth required)
// POST   /api/collections         create collection (auth required)
// GET    /api/collections/{id}    fetch collection (auth required, owner)
// DELETE /api/collections/{id}    delete collection (auth required, owner)
// GET    /api/users/me            caller's public profile (auth required)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	dev := s.config.Development()

	snippetService := service.NewSnippetService(s.db, s.db, s.logger)
	collectionService := service.NewCollectionService(s.db, s.logger)
	userService := service.NewUserService(s.db, s.logger)

	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger, dev)
	collectionHandler := handler.NewCollectionHandler(collectionService, s.logger, dev)
	userHandler := handler.NewUserHandler(userService, s.logger, dev)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success":true,"message":"ok"}`))
		})

		// Single-snippet reads are the one place anonymous callers are
		// allowed, for public snippets.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/snippets/{id}", snippetHandler.HandleGet)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/snippets", snippetHandler.HandleList)
			r.Post("/snippets", snippetHandler.HandleCreate)
			r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
			r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
			r.Post("/snippets/{id}/like", snippetHandler.HandleToggleLike)

			r.Get("/collections", collectionHandler.HandleList)
			r.Post("/collections", collectionHandler.HandleCreate)
			r.Get("/collections/{id}", collectionHandler.HandleGet)
			r.Delete("/collections/{id}", collectionHandler.HandleDelete)

			r.Get("/users/me", userHandler.HandleMe)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("environment", s.config.Environment),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
