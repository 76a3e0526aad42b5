package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/devfoliohq/boltgen/internal/api/handlers"
	appMiddleware "github.com/devfoliohq/boltgen/internal/api/middlewares"
	"github.com/devfoliohq/boltgen/internal/config"
	"github.com/devfoliohq/boltgen/internal/core"
	db "github.com/devfoliohq/boltgen/internal/core/database"
	"github.com/devfoliohq/boltgen/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, dbclient db.DbClient, ai core.AIClient, storage core.ObjectClient, logger *zap.Logger) *Server {
	turns := services.NewTurnService(dbclient, ai, logger, cfg.GenerateTimeout, cfg.ChatHistoryTurns)
	workspaces := services.NewWorkspaceService(dbclient, storage, cfg.BucketName, logger)
	payments := services.NewPaymentService(dbclient, cfg.PaymentSecret, logger)

	authHandler := handlers.NewAuthHandler(dbclient, cfg, logger)
	aiHandler := handlers.NewAIHandler(ai, cfg, logger)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaces, turns, logger)
	paymentHandler := handlers.NewPaymentHandler(payments, logger)
	userHandler := handlers.NewUserHandler(dbclient, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)
		api.Post("/auth/google", authHandler.GoogleAuth)
		api.Get("/pricing", handlers.Pricing)
		api.Post("/chat", aiHandler.Chat)
		api.Post("/generate-code", aiHandler.GenerateCode)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
			protected.Get("/users/me", userHandler.Me)
			protected.Post("/workspaces", workspaceHandler.Create)
			protected.Get("/workspaces", workspaceHandler.List)
			protected.Get("/workspaces/{workspaceID}", workspaceHandler.Get)
			protected.Post("/workspaces/{workspaceID}/messages", workspaceHandler.PostMessage)
			protected.Post("/workspaces/{workspaceID}/export", workspaceHandler.Export)
			protected.Post("/payments", paymentHandler.Record)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Fatal("server error", zap.Error(err))
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
