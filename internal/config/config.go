package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vehicle-rental-backend/internal/domain"
)

// MaxTrackingJitter bounds the tracking drift to 0.0005 per axis per tick.
const MaxTrackingJitter = 0.001

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Mongo     MongoConfig     `yaml:"mongo"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Booking   BookingConfig   `yaml:"booking"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Registry  RegistryConfig  `yaml:"registry"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects where rentals and the signed-in user are persisted
type StorageConfig struct {
	Type    string `yaml:"type"`     // "memory", "file", "postgres", "redis" or "mongo"
	DataDir string `yaml:"data_dir"` // For file storage
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// JWTConfig contains session token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BookingConfig contains checkout settings
type BookingConfig struct {
	PaymentDelayMs  int `yaml:"payment_delay_ms"`
	DraftTTLMinutes int `yaml:"draft_ttl_minutes"`
}

// TrackingConfig contains live tracking simulation settings
type TrackingConfig struct {
	TickIntervalMs int     `yaml:"tick_interval_ms"`
	StartMinutes   int     `yaml:"start_minutes"`
	OriginLat      float64 `yaml:"origin_lat"`
	OriginLng      float64 `yaml:"origin_lng"`
	Jitter         float64 `yaml:"jitter"`
}

type RegistryConfig struct {
	EnforceSingleActive bool `yaml:"enforce_single_active"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SweepBookings string `yaml:"sweep_bookings"`
	RentalStats   string `yaml:"rental_stats"`
}

// CatalogConfig overrides the built-in vehicle catalog when non-empty
type CatalogConfig struct {
	Vehicles []domain.VehicleOffering `yaml:"vehicles"`
}

// Default returns a configuration that runs entirely in memory
func Default() *Config {
	cfg := &Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8080},
		Storage: StorageConfig{Type: "memory"},
		JWT:     JWTConfig{Secret: "dev-secret-change-me-0123456789abcdef"},
	}
	_ = cfg.Validate()
	return cfg
}

// Load reads configuration from a YAML file. An empty path starts from Default.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		// Read config file
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Parse YAML
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Storage
	if val := os.Getenv("STORAGE_TYPE"); val != "" {
		c.Storage.Type = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.Storage.DataDir = val
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Mongo
	if val := os.Getenv("MONGO_URI"); val != "" {
		c.Mongo.URI = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Booking
	if val := os.Getenv("PAYMENT_DELAY_MS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Booking.PaymentDelayMs)
	}

	// Registry
	if val := os.Getenv("ENFORCE_SINGLE_ACTIVE"); val != "" {
		c.Registry.EnforceSingleActive = strings.EqualFold(val, "true") || val == "1"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Storage validation
	switch c.Storage.Type {
	case "":
		c.Storage.Type = "memory"
	case "memory":
	case "file":
		if c.Storage.DataDir == "" {
			c.Storage.DataDir = "data"
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required")
		}
		if c.Redis.KeyPrefix == "" {
			c.Redis.KeyPrefix = "vehicle-rental:"
		}
	case "mongo":
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo uri is required")
		}
		if c.Mongo.Database == "" {
			c.Mongo.Database = "vehicle_rental"
		}
		if c.Mongo.Collection == "" {
			c.Mongo.Collection = "blobs"
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 24 * 60
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Booking defaults
	if c.Booking.PaymentDelayMs < 0 {
		return fmt.Errorf("payment delay must not be negative")
	}
	if c.Booking.PaymentDelayMs == 0 {
		c.Booking.PaymentDelayMs = 1500
	}
	if c.Booking.DraftTTLMinutes == 0 {
		c.Booking.DraftTTLMinutes = 30
	}

	// Tracking defaults
	if c.Tracking.TickIntervalMs == 0 {
		c.Tracking.TickIntervalMs = 3000
	}
	if c.Tracking.TickIntervalMs < 0 {
		return fmt.Errorf("tracking tick interval must be positive")
	}
	if c.Tracking.StartMinutes < 0 {
		return fmt.Errorf("tracking start minutes must not be negative")
	}
	if c.Tracking.StartMinutes == 0 {
		c.Tracking.StartMinutes = 25
	}
	if c.Tracking.OriginLat == 0 && c.Tracking.OriginLng == 0 {
		c.Tracking.OriginLat = 40.7128
		c.Tracking.OriginLng = -74.0060
	}
	// Each tick moves at most half the jitter per axis
	if c.Tracking.Jitter < 0 || c.Tracking.Jitter > MaxTrackingJitter {
		return fmt.Errorf("tracking jitter must be between 0 and %v", MaxTrackingJitter)
	}
	if c.Tracking.Jitter == 0 {
		c.Tracking.Jitter = MaxTrackingJitter
	}

	// Scheduler defaults
	if c.Scheduler.SweepBookings == "" {
		c.Scheduler.SweepBookings = "0 */5 * * * *" // Every 5 minutes
	}
	if c.Scheduler.RentalStats == "" {
		c.Scheduler.RentalStats = "0 0 * * * *" // Hourly
	}

	// Catalog validation
	seen := make(map[string]bool, len(c.Catalog.Vehicles))
	for _, v := range c.Catalog.Vehicles {
		if v.ID == "" {
			return fmt.Errorf("catalog vehicle id is required")
		}
		if seen[v.ID] {
			return fmt.Errorf("duplicate catalog vehicle id: %s", v.ID)
		}
		seen[v.ID] = true
		if !v.Category.Valid() {
			return fmt.Errorf("invalid type %q for vehicle %s", v.Category, v.ID)
		}
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) PaymentDelay() time.Duration {
	return time.Duration(c.Booking.PaymentDelayMs) * time.Millisecond
}

func (c *Config) DraftTTL() time.Duration {
	return time.Duration(c.Booking.DraftTTLMinutes) * time.Minute
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Tracking.TickIntervalMs) * time.Millisecond
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}
