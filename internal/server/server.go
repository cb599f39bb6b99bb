// Package server wires the application together: store, services, handlers,
// middleware, and routes, plus startup and graceful shutdown.
//
// This is the composition root — every dependency is assembled here, and
// each layer only receives what it needs: services get repository
// interfaces, handlers get services, nothing below the handler touches HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/skillshare/internal/auth"
	"github.com/sakif/skillshare/internal/handler"
	"github.com/sakif/skillshare/internal/middleware"
	"github.com/sakif/skillshare/internal/repository"
	"github.com/sakif/skillshare/internal/repository/sqlite"
	"github.com/sakif/skillshare/internal/repository/surreal"
	"github.com/sakif/skillshare/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port int

	// Store selection: "sqlite" (default) or "surreal".
	StoreDriver string
	DBPath      string         // sqlite only
	Surreal     surreal.Config // surreal only

	JWTSecret string

	// GitHub OAuth is optional; when the client ID is empty the OAuth
	// routes are not registered.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// Origins allowed by CORS, e.g. the SPA dev server. Empty means no
	// cross-origin access.
	AllowedOrigins []string
}

// Server owns the router and the store connection; the store is closed
// during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	store  repository.Store
	closer io.Closer
}

// New assembles the full dependency chain: store → services → handlers →
// routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	store, closer, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
		closer: closer,
	}

	if err := s.setupRoutes(); err != nil {
		closer.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStore picks the persistence driver from config. Both drivers satisfy
// repository.Store, so everything above this line is identical for both.
func openStore(cfg Config) (repository.Store, io.Closer, error) {
	switch cfg.StoreDriver {
	case "", "sqlite":
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case "surreal":
		st, err := surreal.New(cfg.Surreal)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	// Global middleware, in execution order.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	if len(s.config.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Services share the one store through its repository interfaces.
	accountService := service.NewAccountService(s.store, tokens, s.logger)
	networkService := service.NewNetworkService(s.store, s.store, s.logger)
	directoryService := service.NewDirectoryService(s.store, s.store, s.store, s.logger)
	projectService := service.NewProjectService(s.store, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authHandler := handler.NewAuthHandler(accountService, github, s.logger)
	accountHandler := handler.NewAccountHandler(accountService, s.logger)
	networkHandler := handler.NewNetworkHandler(networkService, s.logger)
	directoryHandler := handler.NewDirectoryHandler(directoryService, s.logger)
	projectHandler := handler.NewProjectHandler(projectService, s.logger)

	// Liveness probe.
	s.router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "SkillShare API is active!")
	})

	s.router.Route("/api/auth", func(r chi.Router) {
		// Public: anyone can register or log in.
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}

		// Everything else requires a valid credential.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			// Profiles and discovery
			r.Get("/profile/{userId}", directoryHandler.HandleProfile)
			r.Get("/all-users/{userId}", directoryHandler.HandleAllUsers)
			r.Get("/search", directoryHandler.HandleSearch)

			// Own account
			r.Put("/settings/{userId}", accountHandler.HandleUpdateSettings)
			r.Put("/update-skills/{userId}", accountHandler.HandleUpdateSkills)

			// Connections
			r.Post("/send-request", networkHandler.HandleSendRequest)
			r.Get("/notifications/{userId}", networkHandler.HandleNotifications)
			r.Post("/accept-request", networkHandler.HandleAcceptRequest)
			r.Delete("/reject-request/{notificationId}", networkHandler.HandleRejectRequest)
			r.Post("/remove-connection", networkHandler.HandleRemoveConnection)

			// Projects
			r.Post("/add-project", projectHandler.HandleAddProject)
			r.Get("/user-projects/{userId}", projectHandler.HandleUserProjects)
			r.Put("/project/{projectId}", projectHandler.HandleUpdateProject)
			r.Delete("/project/{projectId}", projectHandler.HandleDeleteProject)
		})
	})

	return nil
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the store.
func (s *Server) Start() error {
	defer s.closer.Close()

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
			slog.String("store", storeName(s.config)),
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

func storeName(cfg Config) string {
	if cfg.StoreDriver == "surreal" {
		return "surreal " + cfg.Surreal.URL
	}
	return "sqlite " + cfg.DBPath
}
