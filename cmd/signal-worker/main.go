package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rafipicu1/bartertalco-sub000/internal/cache"
	"github.com/rafipicu1/bartertalco-sub000/internal/config"
	"github.com/rafipicu1/bartertalco-sub000/internal/logger"
	"github.com/rafipicu1/bartertalco-sub000/internal/signals"
)

// signal-worker drains the signals topic into the Redis store the ranker
// reads from.
func main() {
	cfg := config.New()
	cfg.Log.Component = "signal_worker"
	logger.InitFromConfig(cfg)
	log := logger.L()

	if len(cfg.Kafka.Brokers) == 0 {
		log.Error("KAFKA_BROKERS is empty; signals are written to redis directly")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}

	log.Info("consuming signals",
		"brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.SignalsTopic,
		"group", cfg.Kafka.Group, "workers", cfg.Kafka.Workers)

	signals.RunWorkers(ctx, cfg.Kafka.Workers, func() signals.MessageReader {
		return signals.NewReader(cfg.Kafka.Brokers, cfg.Kafka.SignalsTopic, cfg.Kafka.Group)
	}, redisCache, log)

	log.Info("signal worker stopped")
}
