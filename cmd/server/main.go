package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nahpet/shortener/internal/config"
	"github.com/nahpet/shortener/internal/infra"
	"github.com/nahpet/shortener/internal/observability"
	"github.com/nahpet/shortener/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	obs, err := observability.Setup(ctx, observability.Config{
		ServiceName:  "shortener",
		Environment:  cfg.Server.Environment,
		OTLPEndpoint: cfg.App.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}
	logger := obs.Logger

	db, err := infra.NewPostgresPool(ctx, cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("database connected")

	cache, err := infra.NewCacheClient(ctx, cfg.Cache.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to cache: %v", err)
	}
	defer cache.Close()
	logger.Info("cache connected")

	// The click queue is optional; without it clicks only go to Postgres.
	var queueConn *amqp.Connection
	var queueCh *amqp.Channel
	if cfg.Queue.URL != "" {
		queueConn, queueCh, err = infra.NewQueueChannel(cfg.Queue.URL, cfg.Queue.ClickQueue)
		if err != nil {
			log.Fatalf("Failed to connect to queue: %v", err)
		}
		defer queueConn.Close()
		logger.Info("click queue connected", slog.String("queue", cfg.Queue.ClickQueue))
	}

	srv := server.NewServer(cfg, obs, db, cache, queueCh)

	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Server.Port),
			slog.String("base_url", cfg.App.BaseURL),
			slog.String("primary_domain", cfg.App.PrimaryDomain))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	obs.Shutdown(shutdownCtx)

	logger.Info("server exited gracefully")
}
