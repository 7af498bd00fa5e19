package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Hub listener
	HubHost    string `env:"HUB_HOST" default:""`
	HubPort    int    `env:"HUB_PORT" default:"8080"`
	StatusPort int    `env:"STATUS_PORT" default:"8084"`

	// Address the nodes dial to reach the hub
	HubAddr string `env:"HUB_ADDR" default:"127.0.0.1:8080"`

	// Inventory
	Zones             []string `env:"ZONES" default:"A,B"`
	LowStockThreshold int      `env:"LOW_STOCK_THRESHOLD" default:"3"`

	// Connection handling
	ReadBufferSize          int           `env:"READ_BUFFER_SIZE" default:"1024"`
	IdleTimeout             time.Duration `env:"IDLE_TIMEOUT" default:"0"` // 0 = no read deadline
	RateLimit               float64       `env:"RATE_LIMIT" default:"0"`   // msgs/sec, 0 = unlimited
	RateBurst               int           `env:"RATE_BURST" default:"20"`
	EvictWorkerOnDisconnect bool          `env:"EVICT_WORKER_ON_DISCONNECT" default:"true"`

	// Redis snapshot mirror (empty URL disables it)
	RedisURL      string        `env:"REDIS_URL" default:""`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	SnapshotTTL   time.Duration `env:"SNAPSHOT_TTL" default:"24h"`

	// Warehouse node
	WarehousePollInterval time.Duration `env:"WAREHOUSE_POLL_INTERVAL" default:"5s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"json"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional, system env vars still apply without it
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: could not read .env file: %v\n", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}

	// Hub
	if err := loadEnvString(&config.HubHost, "HUB_HOST", ""); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HubPort, "HUB_PORT", 8080); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.StatusPort, "STATUS_PORT", 8084); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.HubAddr, "HUB_ADDR", "127.0.0.1:8080"); err != nil {
		return nil, err
	}

	// Inventory
	if err := loadEnvStringSlice(&config.Zones, "ZONES", []string{"A", "B"}); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.LowStockThreshold, "LOW_STOCK_THRESHOLD", 3); err != nil {
		return nil, err
	}

	// Connections
	if err := loadEnvInt(&config.ReadBufferSize, "READ_BUFFER_SIZE", 1024); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.IdleTimeout, "IDLE_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if err := loadEnvFloat(&config.RateLimit, "RATE_LIMIT", 0); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.RateBurst, "RATE_BURST", 20); err != nil {
		return nil, err
	}
	if err := loadEnvBool(&config.EvictWorkerOnDisconnect, "EVICT_WORKER_ON_DISCONNECT", true); err != nil {
		return nil, err
	}

	// Redis
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", ""); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.SnapshotTTL, "SNAPSHOT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	// Warehouse
	if err := loadEnvDuration(&config.WarehousePollInterval, "WAREHOUSE_POLL_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}

	// Logging
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "json"); err != nil {
		return nil, err
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) error {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, v := range parts {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		*target = out
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HubPort < 0 || c.HubPort > 65535 {
		errors = append(errors, "HUB_PORT must be between 0 and 65535")
	}
	if c.StatusPort < 0 || c.StatusPort > 65535 {
		errors = append(errors, "STATUS_PORT must be between 0 and 65535")
	}
	if len(c.Zones) == 0 {
		errors = append(errors, "ZONES must name at least one zone")
	}
	for _, z := range c.Zones {
		if strings.Contains(z, ":") {
			errors = append(errors, fmt.Sprintf("zone %q must not contain ':'", z))
		}
	}
	if c.LowStockThreshold < 0 {
		errors = append(errors, "LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.ReadBufferSize < 64 {
		errors = append(errors, "READ_BUFFER_SIZE must be at least 64 bytes")
	}
	if c.IdleTimeout < 0 {
		errors = append(errors, "IDLE_TIMEOUT must not be negative")
	}
	if c.RateLimit < 0 {
		errors = append(errors, "RATE_LIMIT must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errors = append(errors, "RATE_BURST must be at least 1 when RATE_LIMIT is set")
	}
	if c.WarehousePollInterval <= 0 {
		errors = append(errors, "WAREHOUSE_POLL_INTERVAL must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}
	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// ListenAddr is the address the hub binds. An empty host binds every interface.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.HubHost, c.HubPort)
}

// StatusAddr is the address of the read-only status API.
func (c *Config) StatusAddr() string {
	return fmt.Sprintf("%s:%d", c.HubHost, c.StatusPort)
}

// RedisAddr strips the scheme from REDIS_URL, go-redis wants host:port
func (c *Config) RedisAddr() string {
	addr := strings.TrimPrefix(c.RedisURL, "redis://")
	return strings.TrimPrefix(addr, "rediss://")
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
