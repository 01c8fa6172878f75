package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	"github.com/rafipicu1/bartertalco-sub000/internal/cache"
	"github.com/rafipicu1/bartertalco-sub000/internal/config"
	"github.com/rafipicu1/bartertalco-sub000/internal/matching"
	"github.com/rafipicu1/bartertalco-sub000/internal/negotiation"
	"github.com/rafipicu1/bartertalco-sub000/internal/notify"
	"github.com/rafipicu1/bartertalco-sub000/internal/ranking"
	"github.com/rafipicu1/bartertalco-sub000/internal/repository"
	"github.com/rafipicu1/bartertalco-sub000/internal/signals"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.) and the
// domain components built on top of them.
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger

	Feed     *ranking.Feed
	Detector *matching.Detector
	Builder  *negotiation.Builder
	Tracker  signals.Tracker

	Hub       *notify.Hub
	Publisher notify.Publisher
	Notifier  *notify.Notifier

	async       *signals.Async
	kafkaWriter *kafka.Writer
}

// New creates a new AppContext.
//
// Behavior:
//   - Ranking weights come from cfg.Feed.WeightsFile, defaults when unset.
//   - Signals go to Kafka when brokers are configured, straight to Redis
//     otherwise; either way writes are fire-and-forget.
//   - Notifications go to the websocket hub and to RabbitMQ (noop when
//     AMQP is not configured or unreachable).
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) (*AppContext, error) {
	weights, err := ranking.LoadWeights(cfg.Feed.WeightsFile)
	if err != nil {
		return nil, fmt.Errorf("ranking weights: %w", err)
	}

	a := &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
	}

	a.Hub = notify.NewHub(logger)
	a.Publisher = notify.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
	a.Notifier = notify.NewNotifier(a.Hub, a.Publisher, logger)

	var source ranking.SignalSource
	if rdb != nil {
		source = rdb
	}
	ranker := ranking.NewRanker(
		repository.NewItemRepository(db),
		repository.NewWishlistRepository(db),
		repository.NewUserRepository(db),
		source,
		ranking.Options{
			Weights:       weights,
			MaxLimit:      cfg.Feed.MaxBatch,
			CandidatePool: cfg.Feed.CandidatePool,
			Logger:        logger,
		},
	)
	a.Feed = ranking.NewFeed(ranker, logger)
	a.Detector = matching.NewDetector(db, a.Notifier, logger)
	a.Builder = negotiation.NewBuilder(db, a.Notifier, logger)

	var sink signals.Tracker
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		a.kafkaWriter = signals.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.SignalsTopic)
		sink = signals.NewKafkaTracker(a.kafkaWriter)
		logger.Info("signals via kafka", "topic", cfg.Kafka.SignalsTopic)
	case rdb != nil:
		sink = signals.NewRedisTracker(rdb)
		logger.Info("signals via redis")
	}
	if sink != nil {
		a.async = signals.NewAsync(sink, 0, logger)
		a.Tracker = a.async
	}

	return a, nil
}

// Close drains pending signal writes and releases broker connections.
func (a *AppContext) Close(ctx context.Context) error {
	var errs []error
	if a.async != nil {
		if err := a.async.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain signals: %w", err))
		}
	}
	if a.kafkaWriter != nil {
		if err := a.kafkaWriter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka writer: %w", err))
		}
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
