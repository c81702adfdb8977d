package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"task-manager-api/internal/config"
	"task-manager-api/internal/database"
	"task-manager-api/internal/repositories"
	"task-manager-api/internal/routes"
	"task-manager-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := newLogger(cfg)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatalf("migrate: %v", err)
	}
	logger.Info("Successfully connected to MySQL database!")

	tokens, err := services.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("token service: %v", err)
	}

	var taskRepo repositories.TaskRepository = repositories.NewTaskRepository(db)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatalf("invalid REDIS_URL: %v", err)
		}
		rc := redis.NewClient(opts)
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unavailable, task cache will fall back to MySQL")
		}
		taskRepo = repositories.NewCachedTaskRepository(taskRepo, rc, cfg.CacheTTL, logger)
		logger.WithField("ttl", cfg.CacheTTL).Info("task list cache enabled")
	}

	router := routes.SetupRouter(routes.Dependencies{
		Users:        repositories.NewUserRepository(db),
		Tasks:        taskRepo,
		Tokens:       tokens,
		Logger:       logger,
		Ping:         func(ctx context.Context) error { return database.Ping(ctx, db) },
		AllowOrigins: cfg.AllowOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Server listening on %s...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.New()
	logger.SetOutput(os.Stdout)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
