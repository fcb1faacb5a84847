package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskmanager/taskmanager-go/internal/config"
	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/handler"
	"github.com/taskmanager/taskmanager-go/internal/logger"
	"github.com/taskmanager/taskmanager-go/internal/repository"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg.App)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := repository.NewDB(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			slog.Error("database migration failed", "error", err)
			os.Exit(1)
		}
	}

	hasher, err := crypto.NewPasswordHasher(cfg.Auth.PasswordScheme, cfg.Auth.BcryptCost)
	if err != nil {
		slog.Error("password hasher", "error", err)
		os.Exit(1)
	}
	tokens, err := crypto.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.Algorithm)
	if err != nil {
		slog.Error("token manager", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.SecretKey == config.DevSecretKey {
		slog.Warn("using the development signing secret; set AUTH_SECRET_KEY")
	}

	authService := service.NewAuthService(repository.NewUserRepository(db), hasher, tokens, cfg.Auth.TokenTTL)
	taskService := service.NewTaskService(repository.NewTaskRepository(db))

	router := handler.NewRouter(ctx, cfg.Server, handler.Handlers{
		System: handler.NewSystemHandler(cfg.App),
		Auth:   handler.NewAuthHandler(authService, cfg.Auth.CookieSecure),
		Tasks:  handler.NewTaskHandler(taskService),
	}, tokens)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.App.Environment, "version", cfg.App.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}
	stop()

	slog.Info("server stopped")
}
