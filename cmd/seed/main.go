package main

import (
	"os"

	"github.com/rafipicu1/bartertalco-sub000/internal/config"
	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/logger"
)

func main() {
	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if err := db.SeedTestData(database, log); err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("seeding completed")
}
