package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tgapp/internal/config"
	"tgapp/internal/handler"
	"tgapp/internal/repository/redisrepo"
	"tgapp/internal/server"
	"tgapp/internal/service"
	"tgapp/internal/telegram"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Telegram App Backend")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully")

	// Connect to Redis with retries
	rdb, err := connectRedis(cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	logger.Info("Redis connection established")

	// Initialize store and services
	store := redisrepo.NewStore(rdb)
	userService := service.NewUserService(store, logger)
	validator := telegram.NewValidator(logger)
	botClient := telegram.NewClient(cfg.BotToken)
	dispatcher := handler.NewDispatcher(botClient, store, store, cfg.FrontendURL, cfg.WebsiteURL, logger)

	// Register webhook with Telegram when configured
	if cfg.WebhookURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := botClient.SetWebhook(ctx, cfg.WebhookURL); err != nil {
			logger.Warn("Failed to set webhook", zap.Error(err))
		} else {
			logger.Info("Webhook registered", zap.String("url", cfg.WebhookURL))
		}
		cancel()
	}

	srv := server.New(cfg.BotToken, validator, userService, dispatcher, store, logger)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Router(),
	}

	// Start HTTP server in background
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// connectRedis connects to Redis with retries
func connectRedis(redisURL string, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = rdb.Ping(ctx).Err()
		cancel()

		if err == nil {
			return rdb, nil
		}

		logger.Warn("Failed to ping Redis",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}

	rdb.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxRetries, err)
}
