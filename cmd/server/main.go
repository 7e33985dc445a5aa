package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptoalpha/internal/api"
	"cryptoalpha/internal/bot"
	"cryptoalpha/internal/collector"
	"cryptoalpha/internal/config"
	"cryptoalpha/internal/exchange"
	"cryptoalpha/internal/repository"
	"cryptoalpha/internal/service"
	"cryptoalpha/internal/websocket"
	"cryptoalpha/pkg/utils"

	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer logger.Sync()

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", utils.Err(err))
	}
	defer db.Close()

	logger.Info("connected to database",
		utils.String("dsn", cfg.Database.DSNWithoutPassword()))

	// Репозитории
	signalRepo := repository.NewSignalRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Сервисы
	signalService := service.NewSignalService(signalRepo, settingsRepo)
	positionService := service.NewPositionService(positionRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	statsService := service.NewStatsService(statsRepo)

	// WebSocket hub для live-обновлений дашборда
	hub := websocket.NewHub()
	go hub.Run()
	notificationService.SetWebSocketHub(hub)
	statsService.SetWebSocketHub(hub)

	// Биржа и источник цен
	mexc := exchange.NewMEXC(
		cfg.Trading.MexcAPIKey,
		cfg.Trading.MexcSecretKey,
		cfg.Trading.MexcBaseURL,
	)
	prices := collector.New(cfg.Collector.BaseURL, cfg.Collector.Timeout)

	// Торговое ядро
	gate := bot.NewGate(signalRepo, positionRepo, cfg.Trading.SignalCooldown)
	trader := bot.NewTrader(mexc, signalRepo, positionRepo, settingsRepo, notificationService, cfg.Trading.QuoteCurrency)
	monitor := bot.NewMonitor(mexc, positionRepo, notificationService, statsService)
	engine := bot.NewEngine(cfg, gate, trader, monitor, positionRepo, settingsRepo, prices)

	engineCtx, cancelEngine := context.WithCancel(context.Background())
	go engine.Start(engineCtx)

	// HTTP API
	deps := &api.Dependencies{
		SignalService:       signalService,
		PositionService:     positionService,
		StatsService:        statsService,
		SettingsService:     settingsService,
		NotificationService: notificationService,
		WSHub:               hub,
		APITokenHash:        cfg.Security.APITokenHash,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.SetupRoutes(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting http server", utils.String("addr", server.Addr))
		var err error
		if cfg.Server.UseHTTPS {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", utils.Err(err))
		}
	}()

	// Graceful shutdown: останавливаем торговый цикл до HTTP сервера,
	// чтобы не оборвать исполнение сигнала на середине.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	engine.Stop()
	cancelEngine()
	hub.Stop()

	if err := mexc.Close(); err != nil {
		logger.Warn("error closing exchange client", utils.Err(err))
	}
	exchange.CloseGlobalClient()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", utils.Err(err))
	}

	logger.Info("server exited")
}

// initDatabase создает подключение к базе данных с пулом соединений
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
