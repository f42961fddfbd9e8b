package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Cache
	Cache CacheConfig

	// Database (cache backend = postgres)
	Database DatabaseConfig

	// Redis (cache backend = redis, shared rate limit)
	Redis RedisConfig

	// External data providers
	Providers ProvidersConfig

	// Scan defaults (CLI flags / API requests override these)
	Scan ScanConfig

	// Scheduler
	WarmupCron string

	// Logging
	LogLevel  string
	LogFormat string
}

// CacheConfig selects the cache backend and its TTL table
type CacheConfig struct {
	Backend      string // memory, redis, postgres
	PriceTTL     time.Duration
	ProfileTTL   time.Duration
	StatementTTL time.Duration
	UniverseTTL  time.Duration
	RegimeTTL    time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	Enabled   bool
	KeyPrefix string        // every hunter key lives under "<prefix>:"
	Timeout   time.Duration // dial and per-command timeout
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL            string
	ConnectTimeout time.Duration

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ProvidersConfig holds credentials and pacing for the data providers
type ProvidersConfig struct {
	Timeout time.Duration // per-provider attempt timeout

	FMPAPIKey  string
	FMPBaseURL string
	FMPRPS     float64

	AlphaVantageAPIKey  string
	AlphaVantageBaseURL string
	AlphaVantageRPS     float64

	YahooRPS float64
	StooqRPS float64

	// SharedRateLimit makes providers also respect the Redis sliding window,
	// so several hunter processes can share one API key.
	SharedRateLimit bool
}

// ScanConfig holds default scan options
type ScanConfig struct {
	Lookback       string // 1y, 2y, 3y, 5y
	Concurrency    int
	MaxSymbols     int
	MinProbability float64
	Deadline       time.Duration
	Weights        string // "technical,fundamental,risk"; empty uses the strategy weights
	MarketIndex    string
	StrategyFile   string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Cache: CacheConfig{
			Backend:      strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
			PriceTTL:     getEnvAsDuration("CACHE_PRICE_TTL", "1h"),
			ProfileTTL:   getEnvAsDuration("CACHE_PROFILE_TTL", "12h"),
			StatementTTL: getEnvAsDuration("CACHE_STATEMENT_TTL", "72h"),
			UniverseTTL:  getEnvAsDuration("CACHE_UNIVERSE_TTL", "72h"),
			RegimeTTL:    getEnvAsDuration("CACHE_REGIME_TTL", "1h"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			ConnectTimeout:  getEnvAsDuration("DB_CONNECT_TIMEOUT", "5s"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			Enabled:   getEnvAsBool("REDIS_ENABLED", false),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "hunter"),
			Timeout:   getEnvAsDuration("REDIS_TIMEOUT", "3s"),
		},

		Providers: ProvidersConfig{
			Timeout:             getEnvAsDuration("PROVIDER_TIMEOUT", "15s"),
			FMPAPIKey:           getEnv("FMP_API_KEY", ""),
			FMPBaseURL:          getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
			FMPRPS:              getEnvAsFloat("FMP_RPS", 3),
			AlphaVantageAPIKey:  getEnv("ALPHAVANTAGE_API_KEY", ""),
			AlphaVantageBaseURL: getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			AlphaVantageRPS:     getEnvAsFloat("ALPHAVANTAGE_RPS", 1),
			YahooRPS:            getEnvAsFloat("YAHOO_RPS", 5),
			StooqRPS:            getEnvAsFloat("STOOQ_RPS", 5),
			SharedRateLimit:     getEnvAsBool("SHARED_RATE_LIMIT", false),
		},

		Scan: ScanConfig{
			Lookback:       getEnv("SCAN_LOOKBACK", "2y"),
			Concurrency:    getEnvAsInt("SCAN_CONCURRENCY", 8),
			MaxSymbols:     getEnvAsInt("SCAN_MAX_SYMBOLS", 300),
			MinProbability: getEnvAsFloat("SCAN_MIN_PROBABILITY", 0),
			Deadline:       getEnvAsDuration("SCAN_DEADLINE", "10m"),
			Weights:        getEnv("SCAN_WEIGHTS", ""),
			MarketIndex:    getEnv("MARKET_INDEX_SYMBOL", "^GSPC"),
			StrategyFile:   getEnv("STRATEGY_FILE", ""),
		},

		WarmupCron: getEnv("WARMUP_CRON", "0 30 6 * * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("CACHE_BACKEND=redis requires REDIS_ENABLED=true")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("CACHE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, redis, postgres")
	}

	if c.Providers.SharedRateLimit && !c.Redis.Enabled {
		return fmt.Errorf("SHARED_RATE_LIMIT requires REDIS_ENABLED=true")
	}

	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
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
