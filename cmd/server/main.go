package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/folio/internal/clients/alphavantage"
	"github.com/aristath/folio/internal/config"
	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/events"
	"github.com/aristath/folio/internal/modules/market"
	marketjobs "github.com/aristath/folio/internal/modules/market/jobs"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/modules/settings"
	"github.com/aristath/folio/internal/scheduler"
	"github.com/aristath/folio/internal/server"
	"github.com/aristath/folio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		errLog := logger.New(logger.Config{Level: "error"})
		errLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting folio")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	eventManager := events.NewManager(log)

	// Quote gateway: live Alpha Vantage client behind an on-disk history cache.
	avClient := alphavantage.NewClient(alphavantage.Config{
		BaseURL: cfg.AlphaVantageBaseURL,
		APIKey:  cfg.AlphaVantageKey,
		Timeout: cfg.QuoteTimeout,
	}, log)

	historyCache, err := market.NewHistoryCache(cfg.HistoryCachePath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history cache")
	}
	defer historyCache.Close()

	gateway := market.NewCachedGateway(avClient, historyCache, cfg.HistoryCacheTTL, log)
	fetcher := market.NewFetcher(gateway, market.FetchPolicy{
		Concurrency: cfg.QuoteConcurrency,
		MinInterval: cfg.QuoteMinInterval,
	}, log)

	// Portfolio
	lotRepo := portfolio.NewLotRepository(db.Conn(), log)
	portfolioService := portfolio.NewService(lotRepo, fetcher, fetcher, eventManager, log)
	portfolioHandler := portfolio.NewHandler(portfolioService, log)

	// Settings
	settingsRepo := settings.NewRepository(db, log)
	if err := settingsRepo.EnsureDefaults(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed default settings")
	}
	settingsHandler := settings.NewHandler(settingsRepo, eventManager, log)

	// Market
	marketHandler := market.NewHandler(gateway, log)

	// Background jobs
	sched := scheduler.New(log)
	refreshJob := marketjobs.NewHistoryRefreshJob(lotRepo, avClient, historyCache, eventManager, log)
	if err := sched.AddJob(cfg.HistoryRefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register history refresh job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:             cfg.Port,
		Log:              log,
		DB:               db,
		DevMode:          cfg.DevMode,
		PortfolioHandler: portfolioHandler,
		MarketHandler:    marketHandler,
		SettingsHandler:  settingsHandler,
		Events:           eventManager,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
