package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"nepse-stock-scryper/internal/ingestion/config"
	delivery "nepse-stock-scryper/internal/ingestion/delivery/http"
	_ "nepse-stock-scryper/internal/ingestion/docs"
	"nepse-stock-scryper/internal/ingestion/repository"
	"nepse-stock-scryper/internal/ingestion/runlog"
	"nepse-stock-scryper/internal/ingestion/service"
	"nepse-stock-scryper/internal/ingestion/source"
	"nepse-stock-scryper/pkg/logger"
	"nepse-stock-scryper/pkg/postgres"
	"nepse-stock-scryper/pkg/redis"
	"nepse-stock-scryper/pkg/telegram"
	"nepse-stock-scryper/pkg/utils"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the ingestion service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding, logger.WithFile(logger.FileConfig{
		Path:       cfg.Logger.File.Path,
		MaxSizeMB:  cfg.Logger.File.MaxSizeMB,
		MaxBackups: cfg.Logger.File.MaxBackups,
		MaxAgeDays: cfg.Logger.File.MaxAgeDays,
		Compress:   cfg.Logger.File.Compress,
	}))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Ingestion Service", logger.Field("name", cfg.App.Name))

	// prices go out as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	var (
		runLog    runlog.Log = runlog.NewMemory(cfg.Ingestion.RunLogSize)
		publisher            = repository.NewNoopOutcomePublisher()
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
		runLog = runlog.NewRedis(redisClient.Client, cfg.Ingestion.RunLogSize)
		publisher = repository.NewRedisOutcomePublisher(redisClient.Client, cfg.Redis.StreamMaxLen)
	}

	notifier := telegram.NewNoop()
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Warn("Telegram disabled, failed to initialize client", logger.ErrorField(err))
			notifier = telegram.NewNoop()
		}
	}

	// Repositories
	companyRepo := repository.NewCompanyRepository(db.DB)
	marketDataRepo := repository.NewDailyMarketDataRepository(db.DB)

	// Services
	resolver := service.NewCompanyResolver(companyRepo, cfg.Ingestion.CompanyCacheTTL, appLogger)
	reconciler := service.NewMarketDataReconciler(marketDataRepo, cfg.Ingestion.UpsertMode, appLogger)
	ingestionSvc := service.NewIngestionService(resolver, reconciler, runLog, publisher, notifier, cfg.Ingestion, appLogger)
	scrapeSvc := service.NewScrapeService([]source.PageSource{
		source.NewHTTPSource(cfg.Scraper, appLogger),
		source.NewBrowserSource(cfg.Scraper, appLogger),
	}, ingestionSvc, appLogger)
	marketDataSvc := service.NewMarketDataService(companyRepo, marketDataRepo, appLogger)

	validate := validator.New()
	runner := source.NewProcessSource(source.ProcessConfig{
		Command: cfg.Trigger.Command,
		Args:    cfg.Trigger.Args,
		Timeout: cfg.Trigger.ProcessTimeout,
	}, validate, appLogger)
	var limiter *rate.Limiter
	if cfg.Trigger.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Trigger.MinInterval), 1)
	}
	triggerSvc := service.NewTriggerService(runner, &http.Client{Timeout: cfg.Trigger.IngestTimeout}, limiter, notifier, appLogger)

	if cfg.Schedule.Cron != "" {
		scheduleSvc, err := service.NewScheduleService(cfg.Schedule.Cron, cfg.Schedule.Source, utils.LoadLocation(cfg.Ingestion.TimeZone), cfg.Schedule.PollingInterval, scrapeSvc, appLogger)
		if err != nil {
			appLogger.Fatal("Invalid scrape schedule", logger.ErrorField(err))
		}
		go scheduleSvc.Start(ctx)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = delivery.NewRequestValidator(validate)
	e.Use(middleware.Recover())

	apiV1 := e.Group("/api/v1")
	delivery.NewIngestionHandler(ingestionSvc, scrapeSvc, appLogger).RegisterRoutes(apiV1.Group("/scrape"))
	delivery.NewTriggerHandler(triggerSvc, cfg.Trigger.IngestURL, appLogger).RegisterRoutes(apiV1.Group("/scrape-via-process"))
	delivery.NewCompanyHandler(marketDataSvc, appLogger).RegisterRoutes(apiV1.Group("/companies"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title NEPSE Ingestion API
// @version 1.0
// @description Scrapes the NEPSE today's-price page and upserts companies and daily market data.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "ingestion-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-ingestion.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing ingestion-service CLI: %s\n", err)
		os.Exit(1)
	}
}
