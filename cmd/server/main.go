// Hanatore - Language Training API Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/hanatore/api/internal/api"
	"github.com/hanatore/api/internal/config"
	"github.com/hanatore/api/internal/dialog"
	"github.com/hanatore/api/internal/evaluate"
	"github.com/hanatore/api/internal/identity"
	"github.com/hanatore/api/internal/league"
	"github.com/hanatore/api/internal/middleware"
	"github.com/hanatore/api/internal/question"
	"github.com/hanatore/api/internal/store"
	"github.com/hanatore/api/internal/training"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	catalog := question.Default()

	// Evaluation: the generative backend is optional; the heuristic
	// covers every request when it is absent or failing.
	var gen evaluate.TextGenerator
	var remote evaluate.Evaluator
	if cfg.Gemini.Available() {
		client := evaluate.NewGeminiClient(cfg.Gemini)
		gen = client
		remote = evaluate.NewRemoteEvaluator(client)
		slog.Info("Generative backend configured", "model", client.Model())
	} else {
		slog.Info("Generative backend not configured, heuristic scoring only")
	}
	gateway := evaluate.NewGateway(remote, evaluate.NewHeuristic(evaluate.DefaultLexicons()))

	// Initialize services.
	trainingSvc := training.NewService(repo, catalog, gateway, nil)
	leagueSvc := league.NewService(repo, nil, nil)

	// Initialize handlers.
	baseHandler := api.NewHandler(repo)
	trainingHandler := api.NewTrainingHandler(baseHandler, trainingSvc)
	questionHandler := api.NewQuestionHandler(baseHandler, catalog)
	leagueHandler := api.NewLeagueHandler(baseHandler, leagueSvc)
	userHandler := api.NewUserHandler(baseHandler)
	aiHandler := api.NewAIHandler(baseHandler, gateway, cfg.Gemini.Available(), cfg.Gemini.Model)
	dialogHandler := dialog.NewHandler(gen, catalog, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	corsOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))
	r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

	baseHandler.RegisterRoutes(r)
	trainingHandler.RegisterRoutes(r)
	questionHandler.RegisterRoutes(r)
	leagueHandler.RegisterRoutes(r)
	userHandler.RegisterRoutes(r)
	aiHandler.RegisterRoutes(r)
	r.Get("/ws/dialog", dialogHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket dialogs stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
