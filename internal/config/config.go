package config

import (
	"os"
	"strconv"
	"time"

	"tribuna/internal/database"
	"tribuna/internal/messaging"
)

// Config contains the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Performance monitoring
	PprofEnabled bool
	PprofPort    string

	Database    database.Config
	NATS        messaging.Config
	Cache       CacheConfig
	Reservation ReservationConfig
	Pricing     PricingConfig
	Reconcile   ReconcileConfig
}

// CacheConfig configures the Valkey/Redis cache
type CacheConfig struct {
	Addr     string
	Password string
	QuoteTTL time.Duration
	MatchTTL time.Duration
}

// ReservationConfig configures hold lifetimes and the expiry sweep
type ReservationConfig struct {
	DefaultTTL    time.Duration
	MaxTTL        time.Duration
	SweepInterval time.Duration
	MaxRetries    int
}

// PricingConfig carries the tunable pricing knobs. Rivalry and
// popularity tables ship as engine defaults and can be replaced wholesale
// at startup; the scalar knobs are adjustable per environment.
type PricingConfig struct {
	PlayoffMultiplier float64
	DemandBandMin     float64
	DemandBandMax     float64
	DefaultPopularity float64
}

// ReconcileConfig configures payment matching. AmountTolerance is in
// paise; FallbackWindow bounds the amount+time heuristic.
type ReconcileConfig struct {
	AmountTolerance int64
	FallbackWindow  time.Duration
}

// Load loads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		PprofEnabled: getEnv("PPROF_ENABLED", "false") == "true",
		PprofPort:    getEnv("PPROF_PORT", "6060"),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "tribuna"),
			Password:           getEnv("DB_PASSWORD", "tribuna123"),
			DBName:             getEnv("DB_NAME", "tribuna"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "tribuna"),
			ClientID:  getEnv("NATS_CLIENT_ID", "tribuna-api"),
		},

		Cache: CacheConfig{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			QuoteTTL: time.Duration(getEnvInt("CACHE_QUOTE_TTL_SEC", 30)) * time.Second,
			MatchTTL: time.Duration(getEnvInt("CACHE_MATCH_TTL_SEC", 300)) * time.Second,
		},

		Reservation: ReservationConfig{
			DefaultTTL:    time.Duration(getEnvInt("HOLD_DEFAULT_TTL_SEC", 600)) * time.Second,
			MaxTTL:        time.Duration(getEnvInt("HOLD_MAX_TTL_SEC", 1800)) * time.Second,
			SweepInterval: time.Duration(getEnvInt("HOLD_SWEEP_INTERVAL_SEC", 30)) * time.Second,
			MaxRetries:    getEnvInt("HOLD_OP_MAX_RETRIES", 3),
		},

		Pricing: PricingConfig{
			PlayoffMultiplier: getEnvFloat("PRICING_PLAYOFF_MULTIPLIER", 1.5),
			DemandBandMin:     getEnvFloat("PRICING_DEMAND_BAND_MIN", 0.8),
			DemandBandMax:     getEnvFloat("PRICING_DEMAND_BAND_MAX", 1.2),
			DefaultPopularity: getEnvFloat("PRICING_DEFAULT_POPULARITY", 0.5),
		},

		Reconcile: ReconcileConfig{
			AmountTolerance: int64(getEnvInt("RECONCILE_AMOUNT_TOLERANCE_PAISE", 100)),
			FallbackWindow:  time.Duration(getEnvInt("RECONCILE_FALLBACK_WINDOW_SEC", 1800)) * time.Second,
		},
	}
}

// getEnv reads an environment variable or returns the default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat reads a float environment variable
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
