package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tradebridge/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Bybit API
	APIKey     string
	SecretKey  string
	IsTestnet  bool
	RecvWindow int           // Request validity window in milliseconds
	APITimeout time.Duration // HTTP client timeout for exchange calls

	// Telegram
	TelegramToken  string
	TelegramChatID int64

	// Trading Parameters
	QuoteAsset      string        // Settlement asset used for balance lookups (e.g. "USDT")
	RiskPercent     float64       // Fraction of equity risked when sizing dynamically (e.g. 0.02 for 2%)
	StopSettleDelay time.Duration // Wait after order placement before setting protective stops
	FillLookupDelay time.Duration // Additional wait before reading back the fill price

	// HTTP Server
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Bybit API
	cfg.APIKey = getEnv("BYBIT_API_KEY", "")
	cfg.SecretKey = getEnv("BYBIT_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("BYBIT_TESTNET", true) // Default to testnet for safety

	if cfg.APIKey == "" {
		errs = append(errs, "BYBIT_API_KEY must be set")
	}
	if cfg.SecretKey == "" {
		errs = append(errs, "BYBIT_API_SECRET must be set")
	}

	cfg.RecvWindow = getEnvAsInt("BYBIT_RECV_WINDOW", 5000)
	if cfg.RecvWindow <= 0 {
		errs = append(errs, "BYBIT_RECV_WINDOW must be positive")
	}

	apiTimeoutSeconds := getEnvAsInt("BYBIT_API_TIMEOUT_SECONDS", 30)
	if apiTimeoutSeconds <= 0 {
		errs = append(errs, "BYBIT_API_TIMEOUT_SECONDS must be positive")
	}
	cfg.APITimeout = time.Duration(apiTimeoutSeconds) * time.Second

	// Telegram
	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	if cfg.TelegramToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN must be set")
	}

	chatIDStr := getEnv("TELEGRAM_CHAT_ID", "")
	if chatIDStr == "" {
		errs = append(errs, "TELEGRAM_CHAT_ID must be set")
	} else {
		cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid TELEGRAM_CHAT_ID: %v", err))
		}
	}

	// Trading Parameters
	cfg.QuoteAsset = getEnv("QUOTE_ASSET", "USDT")
	if cfg.QuoteAsset == "" {
		errs = append(errs, "QUOTE_ASSET must be set")
	}

	cfg.RiskPercent, err = getEnvAsFloatRequired("RISK_PERCENT", 0.02)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_PERCENT: %v", err))
	} else if cfg.RiskPercent <= 0 || cfg.RiskPercent > 1.0 {
		errs = append(errs, "RISK_PERCENT must be between 0.0 (exclusive) and 1.0")
	}

	settleMs := getEnvAsInt("STOP_SETTLE_DELAY_MS", 1000)
	if settleMs < 0 {
		errs = append(errs, "STOP_SETTLE_DELAY_MS cannot be negative")
	}
	cfg.StopSettleDelay = time.Duration(settleMs) * time.Millisecond

	fillMs := getEnvAsInt("FILL_LOOKUP_DELAY_MS", 500)
	if fillMs < 0 {
		errs = append(errs, "FILL_LOOKUP_DELAY_MS cannot be negative")
	}
	cfg.FillLookupDelay = time.Duration(fillMs) * time.Millisecond

	// HTTP Server
	cfg.Port = getEnvAsInt("PORT", 8080)
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, "PORT must be a valid TCP port")
	}

	readTimeoutSeconds := getEnvAsInt("HTTP_READ_TIMEOUT_SECONDS", 10)
	if readTimeoutSeconds <= 0 {
		errs = append(errs, "HTTP_READ_TIMEOUT_SECONDS must be positive")
	}
	cfg.ReadTimeout = time.Duration(readTimeoutSeconds) * time.Second

	// Write timeout must leave room for the settle delays plus the exchange
	// round trips made while the response is still pending.
	writeTimeoutSeconds := getEnvAsInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)
	if writeTimeoutSeconds <= 0 {
		errs = append(errs, "HTTP_WRITE_TIMEOUT_SECONDS must be positive")
	}
	cfg.WriteTimeout = time.Duration(writeTimeoutSeconds) * time.Second

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Log warning? For non-required fields, default is often acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
