package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Security  SecurityConfig
	Trading   TradingConfig
	Collector CollectorConfig
	Logging   LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port     int
	Host     string
	UseHTTPS bool
	CertFile string
	KeyFile  string
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// SecurityConfig - настройки безопасности
type SecurityConfig struct {
	// bcrypt-хеш токена дашборда; пустое значение отключает auth middleware
	APITokenHash string
}

// TradingConfig - настройки торгового ядра
type TradingConfig struct {
	// MEXC API (ключи из окружения, в БД не хранятся)
	MexcAPIKey    string
	MexcSecretKey string
	MexcBaseURL   string

	// Котируемая валюта для составления торговых символов
	QuoteCurrency string

	// Период полного цикла: снапшот -> сигналы -> мониторинг
	CycleInterval time.Duration

	// Окно охлаждения между диспетчеризациями по одному активу
	SignalCooldown time.Duration

	// Таймаут одного сетевого вызова (биржа, БД)
	CallTimeout time.Duration

	// Retry для вызовов биржи
	MaxRetries   int
	RetryBackoff time.Duration
}

// CollectorConfig - настройки сборщика ценовых снапшотов
type CollectorConfig struct {
	BaseURL string
	Timeout time.Duration
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			UseHTTPS: getEnvAsBool("USE_HTTPS", false),
			CertFile: getEnv("CERT_FILE", ""),
			KeyFile:  getEnv("KEY_FILE", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "crypto_alpha"),
			User:     getEnv("DB_USER", "crypto"),
			Password: getEnv("DB_PASS", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Security: SecurityConfig{
			APITokenHash: getEnv("API_TOKEN_HASH", ""),
		},
		Trading: TradingConfig{
			MexcAPIKey:    getEnv("MEXC_API_KEY", ""),
			MexcSecretKey: getEnv("MEXC_SECRET_KEY", ""),
			MexcBaseURL:   getEnv("MEXC_BASE_URL", "https://api.mexc.com"),
			QuoteCurrency: getEnv("QUOTE_CURRENCY", "USDT"),

			CycleInterval:  getEnvAsDuration("CYCLE_INTERVAL", 30*time.Minute),
			SignalCooldown: getEnvAsDuration("SIGNAL_COOLDOWN", 48*time.Hour),
			CallTimeout:    getEnvAsDuration("CALL_TIMEOUT", 5*time.Second),

			MaxRetries:   getEnvAsInt("MAX_RETRIES", 4),
			RetryBackoff: getEnvAsDuration("RETRY_BACKOFF", 500*time.Millisecond),
		},
		Collector: CollectorConfig{
			BaseURL: getEnv("DEXSCREENER_BASE_URL", "https://api.dexscreener.com"),
			Timeout: getEnvAsDuration("COLLECTOR_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Валидация числовых диапазонов
	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	// Валидация портов
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	// Валидация retry параметров
	if c.Trading.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES cannot be negative, got %d", c.Trading.MaxRetries)
	}

	if c.Trading.MaxRetries > 10 {
		return fmt.Errorf("MAX_RETRIES should not exceed 10, got %d", c.Trading.MaxRetries)
	}

	// Валидация таймаутов (должны быть положительными)
	if c.Trading.CallTimeout <= 0 {
		return fmt.Errorf("CALL_TIMEOUT must be positive, got %v", c.Trading.CallTimeout)
	}

	if c.Trading.CycleInterval < time.Minute {
		return fmt.Errorf("CYCLE_INTERVAL must be at least 1m, got %v", c.Trading.CycleInterval)
	}

	if c.Trading.SignalCooldown <= 0 {
		return fmt.Errorf("SIGNAL_COOLDOWN must be positive, got %v", c.Trading.SignalCooldown)
	}

	if c.Trading.QuoteCurrency == "" {
		return fmt.Errorf("QUOTE_CURRENCY cannot be empty")
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
