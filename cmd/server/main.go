package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rafipicu1/bartertalco-sub000/internal/app"
	"github.com/rafipicu1/bartertalco-sub000/internal/cache"
	"github.com/rafipicu1/bartertalco-sub000/internal/config"
	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/httpapi"
	"github.com/rafipicu1/bartertalco-sub000/internal/logger"
	"github.com/rafipicu1/bartertalco-sub000/internal/notify"
	"github.com/rafipicu1/bartertalco-sub000/internal/repository"
	"github.com/rafipicu1/bartertalco-sub000/internal/server"
	"github.com/rafipicu1/bartertalco-sub000/internal/service/barter"
	"github.com/rafipicu1/bartertalco-sub000/internal/telemetry"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg, log)
	if err != nil {
		log.Error("failed to init tracing", "err", err)
		os.Exit(1)
	}

	// Init DB (migrates on open)
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	normalized, skipped, err := repository.NewConversationRepository(database).NormalizeOrdering(ctx)
	if err != nil {
		log.Error("failed to normalize conversations", "err", err)
		os.Exit(1)
	}
	if normalized > 0 || skipped > 0 {
		log.Info("normalized legacy conversations", "normalized", normalized, "skipped", skipped)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}

	if cfg.IsDevelopment() {
		if err := db.SeedTestData(database, log); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	appCtx, err := app.New(cfg, database, redisCache, log)
	if err != nil {
		log.Error("failed to build app context", "err", err)
		os.Exit(1)
	}
	log.Info("notifications publisher", "mode", notify.PublisherMode(appCtx.Publisher), "reason", notify.PublisherNoopReason(appCtx.Publisher))

	svc := barter.NewBarterService(appCtx)
	router := httpapi.NewRouter(httpapi.NewHandler(svc, appCtx.Hub, log), cfg.Telemetry.ServiceName)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		return server.StartGRPCServer(gctx, cfg, log, barter.NewRegistrar(appCtx))
	})
	g.Go(func() error {
		return httpapi.StartHTTPServer(gctx, cfg, log, router)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "err", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := appCtx.Close(closeCtx); err != nil {
		log.Warn("app context close", "err", err)
	}
	_ = redisCache.Close()
	if err := shutdownTracing(closeCtx); err != nil {
		log.Warn("tracing shutdown", "err", err)
	}
	log.Info("bye")
}
