package main

import (
	"context"
	"log/slog"
	"os"

	"devdir/internal/config"
	"devdir/internal/db"
	"devdir/internal/logger"
	"devdir/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	fixture, err := loadFixture(ctx, os.Getenv("SEED_FILE"), os.Getenv("SEED_URL"))
	if err != nil {
		log.Error("failed to load seed data", "error", err)
		os.Exit(1)
	}

	seeder := &Seeder{
		users:      repository.NewUserRepository(gormDB),
		developers: repository.NewDeveloperRepository(gormDB),
		logger:     log,
	}
	stats, err := seeder.Seed(ctx, fixture)
	if err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}

	log.Info("seed completed",
		"users_created", stats.UsersCreated,
		"users_skipped", stats.UsersSkipped,
		"developers_created", stats.DevelopersCreated,
		"developers_skipped", stats.DevelopersSkipped)
}
