package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"devdir/docs" // swagger docs

	"devdir/internal/auth"
	"devdir/internal/cache"
	"devdir/internal/config"
	"devdir/internal/db"
	"devdir/internal/handler"
	"devdir/internal/identity"
	"devdir/internal/logger"
	"devdir/internal/metrics"
	"devdir/internal/repository"
	"devdir/internal/router"
	"devdir/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Developer Directory API
// @version 1.0
// @description Developer directory with role-based redaction and a metered daily contact quota.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	if cfg.ResetDB {
		log.Warn("reset_db set, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.Warn("drop tables failed (may not exist)", "error", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log)
	defer cacheClient.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, running without cache and token revocation", "addr", cfg.RedisAddr, "error", err)
	}
	cancel()

	m := metrics.New()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	developerRepo := repository.NewDeveloperRepository(gormDB)
	ledger := repository.NewContactLedger(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	resolver := identity.NewResolver(jwtService, tokenStore, log)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	developerService := service.NewDeveloperService(developerRepo, cacheClient, cfg.DeveloperCacheTTL, log)
	contactService := service.NewContactService(developerRepo, ledger,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithDailyLimit(cfg.DailyContactLimit),
		service.WithLedgerTimeout(cfg.LedgerTimeout),
		service.WithStrictQuota(cfg.QuotaStrict),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(
		e,
		cfg,
		log,
		resolver,
		m,
		handler.NewAuthHandler(authService),
		handler.NewDeveloperHandler(developerService),
		handler.NewContactHandler(contactService),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}
	log.Info("swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.ServerPort
		log.Info("listening", "addr", addr, "db_driver", cfg.DBDriver,
			"daily_contact_limit", cfg.DailyContactLimit, "quota_strict", cfg.QuotaStrict)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
