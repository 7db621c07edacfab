package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"coindrop/database"
	"coindrop/domain/entities"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DatabaseName string `envconfig:"DATABASE_NAME"`

	// HTTP configuration
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// NATS configuration
	NATSServers     string `envconfig:"NATS_SERVERS" default:"nats://nats:4222"` // comma-separated
	PurchaseSubject string `envconfig:"PURCHASE_SUBJECT" default:"payments.purchase_completed"`

	// Game rules
	CollectionRadiusMeters float64       `envconfig:"COLLECTION_RADIUS_METERS" default:"10"`
	CoinTTL                time.Duration `envconfig:"COIN_TTL" default:"30m"`
	PlacementMinKm         float64       `envconfig:"PLACEMENT_MIN_KM" default:"1"`
	PlacementMaxKm         float64       `envconfig:"PLACEMENT_MAX_KM" default:"2"`
	MinCoinsPerSession     int           `envconfig:"MIN_COINS_PER_SESSION" default:"1"`
	MaxCoinsPerSession     int           `envconfig:"MAX_COINS_PER_SESSION" default:"10"`
	MinDenomination        int64         `envconfig:"MIN_DENOMINATION" default:"50"`
	MaxDenomination        int64         `envconfig:"MAX_DENOMINATION" default:"50000"`

	// Expiration sweeper configuration
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"60s"`
	SweepBatchSize int           `envconfig:"SWEEP_BATCH_SIZE" default:"500"`

	// Purchase event deduplication
	ProcessedEventCacheSize int `envconfig:"PROCESSED_EVENT_CACHE_SIZE" default:"10000"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // "json" or "text"

	// OpenTelemetry configuration
	OTelEnabled              bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTelServiceName          string `envconfig:"OTEL_SERVICE_NAME" default:"coindrop"`
	OTelExporterType         string `envconfig:"OTEL_EXPORTER_TYPE" default:"console"` // console, otlp, none
	OTelOTLPEndpoint         string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	OTelExportIntervalMillis int    `envconfig:"OTEL_EXPORT_INTERVAL_MILLIS" default:"60000"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// GameRules returns the coin placement and collection rules
func (c *Config) GameRules() entities.GameRules {
	return entities.GameRules{
		CollectionRadiusMeters: c.CollectionRadiusMeters,
		CoinTTL:                c.CoinTTL,
		PlacementMinKm:         c.PlacementMinKm,
		PlacementMaxKm:         c.PlacementMaxKm,
		MinCoinsPerSession:     c.MinCoinsPerSession,
		MaxCoinsPerSession:     c.MaxCoinsPerSession,
		MinDenomination:        c.MinDenomination,
		MaxDenomination:        c.MaxDenomination,
	}
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Environment != "test" {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	if c.CollectionRadiusMeters <= 0 {
		return fmt.Errorf("COLLECTION_RADIUS_METERS must be positive")
	}
	if c.CoinTTL <= 0 {
		return fmt.Errorf("COIN_TTL must be positive")
	}
	if c.PlacementMinKm < 0 || c.PlacementMaxKm < c.PlacementMinKm {
		return fmt.Errorf("placement annulus must satisfy 0 <= PLACEMENT_MIN_KM <= PLACEMENT_MAX_KM")
	}
	if c.MinCoinsPerSession < 1 || c.MaxCoinsPerSession < c.MinCoinsPerSession {
		return fmt.Errorf("coins per session must satisfy 1 <= MIN_COINS_PER_SESSION <= MAX_COINS_PER_SESSION")
	}
	if c.MinDenomination < 1 || c.MaxDenomination < c.MinDenomination {
		return fmt.Errorf("denomination bounds must satisfy 1 <= MIN_DENOMINATION <= MAX_DENOMINATION")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:                ":0",
		PurchaseSubject:         "payments.purchase_completed",
		CollectionRadiusMeters:  10,
		CoinTTL:                 30 * time.Minute,
		PlacementMinKm:          1,
		PlacementMaxKm:          2,
		MinCoinsPerSession:      1,
		MaxCoinsPerSession:      10,
		MinDenomination:         50,
		MaxDenomination:         50000,
		SweepInterval:           60 * time.Second,
		SweepBatchSize:          500,
		ProcessedEventCacheSize: 1000,
		LogLevel:                "debug",
		LogFormat:               "text",
		OTelServiceName:         "coindrop-test",
		OTelExporterType:        "none",
		Environment:             "test",
	}
}
