// Package server wires handlers, middleware, and routes together and owns
// the HTTP listener lifecycle. It is the composition root: every dependency
// in the request path is assembled in New/setupRoutes.
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
	"github.com/rs/cors"

	"github.com/yabzec/SnipHub/internal/auth"
	"github.com/yabzec/SnipHub/internal/config"
	"github.com/yabzec/SnipHub/internal/email"
	"github.com/yabzec/SnipHub/internal/handler"
	"github.com/yabzec/SnipHub/internal/middleware"
	sqliteRepo "github.com/yabzec/SnipHub/internal/repository/sqlite"
	"github.com/yabzec/SnipHub/internal/service"
	"github.com/yabzec/SnipHub/internal/username"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router  *chi.Mux
	cfg     *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	handler http.Handler
}

// New assembles the full dependency graph:
//
//	sqlite.DB → services (auth, snippet, tag, folder) → handlers → routes
//
// The mailer and username generator are created here too; tests build the
// same graph with fakes instead.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	// CORS wraps the whole router so even 404s carry the headers.
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})
	s.handler = c.Handler(s.router)

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	mailer, err := email.NewSMTPMailer(email.Config{
		Host:     s.cfg.SMTPHost,
		Port:     s.cfg.SMTPPort,
		Username: s.cfg.SMTPUsername,
		Password: s.cfg.SMTPPassword,
		From:     s.cfg.NoReplyEmail,
	})
	if err != nil {
		return fmt.Errorf("creating mailer: %w", err)
	}

	authService := service.NewAuthService(
		s.db,
		tokens,
		auth.NewPasswordService(),
		mailer,
		username.NewGenerator(s.logger),
		s.cfg.FrontendBaseURL,
		s.logger,
	)
	snippetService := service.NewSnippetService(s.db, s.db, s.logger)
	tagService := service.NewTagService(s.db, s.logger)
	folderService := service.NewFolderService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	tagHandler := handler.NewTagHandler(tagService, s.logger)
	folderHandler := handler.NewFolderHandler(folderService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignup)
			r.Get("/verify", authHandler.HandleVerify)
			r.Post("/login", authHandler.HandleLogin)
		})

		r.Route("/protected", func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, s.db))

			r.Route("/snippets", func(r chi.Router) {
				r.Get("/", snippetHandler.HandleList)
				r.Get("/{folderID}", snippetHandler.HandleList)
				r.Post("/", snippetHandler.HandleCreate)
				r.Post("/{id}", snippetHandler.HandleUpdate)
				r.Delete("/{id}", snippetHandler.HandleDelete)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", tagHandler.HandleList)
				r.Post("/", tagHandler.HandleCreate)
				r.Delete("/{id}", tagHandler.HandleDelete)
			})

			r.Route("/folders", func(r chi.Router) {
				r.Get("/", folderHandler.HandleList)
				r.Post("/", folderHandler.HandleCreate)
				r.Delete("/{id}", folderHandler.HandleDelete)
			})
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests (30s budget) and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
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
