package main

import (
	"context"
	"errors"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tradebridge/config"
	"tradebridge/internal/adapters/bybit"
	"tradebridge/internal/adapters/logger"
	"tradebridge/internal/adapters/telegram"
	"tradebridge/internal/app"
	"tradebridge/internal/httpserver"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Exchange Client (Bybit Adapter)
	exchangeClient, err := bybit.New(bybit.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		RecvWindow: cfg.RecvWindow,
		Timeout:    cfg.APITimeout,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Bybit client")
		log.Fatalf("FATAL: Failed to initialize Bybit client: %v", err)
	}
	appLogger.Info(context.Background(), "Bybit client initialized")

	// 4. Initialize Notifier (Telegram Adapter)
	notifier, err := telegram.New(telegram.Config{
		Token:  cfg.TelegramToken,
		ChatID: cfg.TelegramChatID,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Telegram notifier")
		log.Fatalf("FATAL: Failed to initialize Telegram notifier: %v", err)
	}

	// 5. Initialize Application Service
	service, err := app.NewService(cfg, appLogger, exchangeClient, notifier)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize application service")
		log.Fatalf("FATAL: Failed to initialize application service: %v", err)
	}

	// 6. Start HTTP Server
	router := httpserver.NewRouter(httpserver.RouterDeps{
		Service:    service,
		Exchange:   exchangeClient,
		Logger:     appLogger,
		QuoteAsset: cfg.QuoteAsset,
		Testnet:    cfg.IsTestnet,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": server.Addr, "testnet": cfg.IsTestnet})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(ctx, err, "HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info(context.Background(), "Shutdown signal received, draining in-flight requests")

	// In-flight signals finish their exchange calls before the listener dies.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(context.Background(), err, "HTTP server shutdown failed")
	}
	appLogger.Info(context.Background(), "Server stopped")
}
