package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"ytrelay/internal/api"
	"ytrelay/internal/config"
	"ytrelay/internal/metrics"
	"ytrelay/internal/relay"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}
	logger.Info("redis connection ready", slog.String("addr", cfg.Redis.Addr()))

	metrics.RegisterRelay()

	hub := relay.NewHub(logger)
	go hub.Run()

	gateway := relay.NewGateway(hub, logger, cfg.Relay.Origins())

	subscriber := relay.NewSubscriber(redisClient, cfg.Relay.Channel, hub, logger)
	if err := subscriber.Start(context.Background()); err != nil {
		log.Fatalf("start bus subscriber: %v", err)
	}

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, cfg, gateway, logger)

	address := fmt.Sprintf(":%d", cfg.Relay.Port)
	server := &http.Server{Addr: address, Handler: router}

	go func() {
		logger.Info("relay listening", slog.String("address", address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start relay server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down relay")

	if err := subscriber.Stop(); err != nil {
		logger.Error("close bus subscription failed", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown http server failed", slog.Any("error", err))
	}

	hub.Stop()

	if err := redisClient.Close(); err != nil {
		logger.Error("close redis client failed", slog.Any("error", err))
	}
}
