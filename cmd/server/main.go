package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/bootstrap"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/config"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/server"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/logger"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/storage"
	"github.com/joho/godotenv"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	db, err := database.Connect(database.Config{
		Host:            cfg.DBHost,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		Name:            cfg.DBName,
		Port:            cfg.DBPort,
		SSLMode:         cfg.DBSSLMode,
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		Debug:           cfg.IsDevelopment(),
	})
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := bootstrap.Migrate(db); err != nil {
		logger.Error("Migration failed: %v", err)
		os.Exit(1)
	}
	if cfg.SeedAdminPassword != "" {
		if err := bootstrap.SeedAdminAccount(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			logger.Error("Failed to seed admin account: %v", err)
			os.Exit(1)
		}
	}

	deps := server.Dependencies{DB: db}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("Invalid REDIS_URL: %v", err)
			os.Exit(1)
		}
		deps.Redis = redis.NewClient(opt)
		if err := deps.Redis.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, rate limits and realtime delivery degraded: %v", err)
		}
	} else {
		logger.Warn("REDIS_URL not set, rate limiting and realtime notifications disabled")
	}

	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
			host = "http://" + host
		}
		deps.Meili = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		logger.Warn("MEILISEARCH_HOST not set, account search falls back to the database")
	}

	if cfg.CloudinaryURL != "" {
		deps.MediaStorage, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL)
		if err != nil {
			logger.Error("Failed to initialize media storage: %v", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("CLOUDINARY_URL not set, media uploads disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewServer(cfg, deps).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("MindHub API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited with error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
	if deps.Redis != nil {
		_ = deps.Redis.Close()
	}
	logger.Info("Server stopped")
}
