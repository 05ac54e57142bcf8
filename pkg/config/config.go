package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Broker     BrokerConfig
	MarketData MarketDataConfig

	// Trading pipeline
	Trading   TradingConfig
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// BrokerConfig holds brokerage API configuration (Alpaca-compatible REST)
type BrokerConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Paper     bool // 모의투자 여부
}

// MarketDataConfig holds market data / news source configuration
type MarketDataConfig struct {
	ChartBaseURL string
	NewsBaseURL  string
	RatePerSec   float64 // outbound request pacing
	Timeout      time.Duration
}

// TradingConfig holds signal and execution parameters
type TradingConfig struct {
	TickersFile   string  // one ticker symbol per line
	ModelDir      string  // persisted model artifacts
	ReportDir     string  // per-instrument training reports
	LedgerPath    string  // decision ledger CSV
	SentimentPath string  // sentiment score CSV
	QuantWeight   float64 // weight of the normalized return term
	QualWeight    float64 // weight of the normalized sentiment term
	OrderQuantity int     // fixed unit quantity per order
	TrainWorkers  int
	NewsWorkers   int
	HistoryYears  int // training lookback
	PredictDays   int // prediction lookback window in calendar days
}

// SchedulerConfig holds cron expressions for the three job classes.
// Expressions use the 6-field (with seconds) format.
type SchedulerConfig struct {
	SentimentCron string
	TrainCron     string
	TradeCron     string
	StopTimeout   time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "tradewind"),
			User:            getEnv("DB_USER", "tradewind"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		Broker: BrokerConfig{
			APIKey:    getEnv("BROKER_API_KEY", ""),
			APISecret: getEnv("BROKER_API_SECRET", ""),
			BaseURL:   getEnv("BROKER_BASE_URL", "https://paper-api.alpaca.markets"),
			Paper:     getEnvAsBool("BROKER_PAPER", true),
		},

		MarketData: MarketDataConfig{
			ChartBaseURL: getEnv("CHART_BASE_URL", "https://query1.finance.yahoo.com"),
			NewsBaseURL:  getEnv("NEWS_BASE_URL", "https://feeds.finance.yahoo.com"),
			RatePerSec:   getEnvAsFloat("MARKET_DATA_RATE", 1.0),
			Timeout:      getEnvAsDuration("MARKET_DATA_TIMEOUT", "15s"),
		},

		Trading: TradingConfig{
			TickersFile:   getEnv("TICKERS_FILE", "data/tickers.txt"),
			ModelDir:      getEnv("MODEL_DIR", "data/models"),
			ReportDir:     getEnv("REPORT_DIR", "data/model_performance"),
			LedgerPath:    getEnv("LEDGER_PATH", "data/buy_sell_decisions.csv"),
			SentimentPath: getEnv("SENTIMENT_PATH", "data/sentiment_scores.csv"),
			QuantWeight:   getEnvAsFloat("QUANT_WEIGHT", 0.8),
			QualWeight:    getEnvAsFloat("QUAL_WEIGHT", 0.2),
			OrderQuantity: getEnvAsInt("ORDER_QUANTITY", 1),
			TrainWorkers:  getEnvAsInt("TRAIN_WORKERS", 2),
			NewsWorkers:   getEnvAsInt("NEWS_WORKERS", 4),
			HistoryYears:  getEnvAsInt("HISTORY_YEARS", 10),
			PredictDays:   getEnvAsInt("PREDICT_DAYS", 90),
		},

		Scheduler: SchedulerConfig{
			SentimentCron: getEnv("SENTIMENT_CRON", "0 0 4 * * 1-5"), // weekdays 04:00
			TrainCron:     getEnv("TRAIN_CRON", "0 0 10 * * 6"),      // Saturday 10:00
			TradeCron:     getEnv("TRADE_CRON", "0 0 9 * * *"),       // daily 09:00
			StopTimeout:   getEnvAsDuration("SCHEDULER_STOP_TIMEOUT", "30s"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// Fusion weights must sum to 1
	if math.Abs(c.Trading.QuantWeight+c.Trading.QualWeight-1.0) > 1e-9 {
		return fmt.Errorf("QUANT_WEIGHT + QUAL_WEIGHT must sum to 1, got %.4f",
			c.Trading.QuantWeight+c.Trading.QualWeight)
	}

	if c.Trading.OrderQuantity <= 0 {
		return fmt.Errorf("ORDER_QUANTITY must be positive")
	}

	return nil
}

// HasBrokerCredentials reports whether broker API credentials are configured.
func (c *Config) HasBrokerCredentials() bool {
	return c.Broker.APIKey != "" && c.Broker.APISecret != ""
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
