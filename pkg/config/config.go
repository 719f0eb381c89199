package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration, loaded once at process start.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Cache    CacheConfig    `yaml:"cache"`

	// Environment is "development" or "production"; development includes
	// error detail in 500 envelopes.
	Environment string `yaml:"environment"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProviderConfig holds identity provider (OIDC) settings
type ProviderConfig struct {
	IssuerURL    string `yaml:"issuer_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// StoreConfig holds document datastore settings
type StoreConfig struct {
	MongoURI string        `yaml:"mongo_uri"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

// RedisConfig holds the rate limiter backend settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggingConfig holds structured logger settings
type LoggingConfig struct {
	Dir                string `yaml:"dir"`
	Level              string `yaml:"level"`
	FileLoggingEnabled bool   `yaml:"file_logging_enabled"`
}

// CacheConfig holds image proxy cache settings
type CacheConfig struct {
	Dir string        `yaml:"dir"`
	TTL time.Duration `yaml:"ttl"`
}

// LoadConfig loads configuration from an optional YAML file (WILDPARK_CONFIG)
// overlaid by environment variables; env vars win.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("WILDPARK_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			MongoURI: "mongodb://localhost:27017",
			Database: "wildpark",
			Timeout:  10 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Logging: LoggingConfig{
			Dir:   "logs",
			Level: "info",
		},
		Cache: CacheConfig{
			Dir: "cache/profile-images",
			TTL: 24 * time.Hour,
		},
		Environment: "development",
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("WILDPARK_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("WILDPARK_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvDuration("WILDPARK_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("WILDPARK_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getEnvDuration("WILDPARK_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("WILDPARK_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.Provider.IssuerURL = getEnv("WILDPARK_PROVIDER_ISSUER", cfg.Provider.IssuerURL)
	cfg.Provider.ClientID = getEnv("WILDPARK_PROVIDER_CLIENT_ID", cfg.Provider.ClientID)
	cfg.Provider.ClientSecret = getEnv("WILDPARK_PROVIDER_CLIENT_SECRET", cfg.Provider.ClientSecret)
	cfg.Provider.RedirectURL = getEnv("WILDPARK_PROVIDER_REDIRECT_URL", cfg.Provider.RedirectURL)

	cfg.Store.MongoURI = getEnv("WILDPARK_MONGO_URI", cfg.Store.MongoURI)
	cfg.Store.Database = getEnv("WILDPARK_MONGO_DATABASE", cfg.Store.Database)
	cfg.Store.Timeout = getEnvDuration("WILDPARK_MONGO_TIMEOUT", cfg.Store.Timeout)

	cfg.Redis.Addr = getEnv("WILDPARK_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("WILDPARK_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("WILDPARK_REDIS_DB", cfg.Redis.DB)

	cfg.Logging.Dir = getEnv("WILDPARK_LOG_DIR", cfg.Logging.Dir)
	cfg.Logging.Level = getEnv("WILDPARK_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.FileLoggingEnabled = getEnvBool("WILDPARK_FILE_LOGGING", cfg.Logging.FileLoggingEnabled)

	cfg.Cache.Dir = getEnv("WILDPARK_CACHE_DIR", cfg.Cache.Dir)
	cfg.Cache.TTL = getEnvDuration("WILDPARK_CACHE_TTL", cfg.Cache.TTL)

	cfg.Environment = getEnv("WILDPARK_ENV", cfg.Environment)
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.Provider.IssuerURL == "" {
		return fmt.Errorf("provider issuer URL is required (WILDPARK_PROVIDER_ISSUER)")
	}
	if c.Provider.ClientID == "" {
		return fmt.Errorf("provider client ID is required (WILDPARK_PROVIDER_CLIENT_ID)")
	}
	if c.Store.MongoURI == "" {
		return fmt.Errorf("mongo URI is required (WILDPARK_MONGO_URI)")
	}
	if c.Environment != "development" && c.Environment != "production" {
		return fmt.Errorf("environment must be development or production, got %q", c.Environment)
	}
	return nil
}

// Development reports whether the process runs in development mode.
func (c *Config) Development() bool {
	return c.Environment == "development"
}

// ConsoleLevel parses the configured log level; unknown values fall back to
// info.
func (c *LoggingConfig) ConsoleLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as int or a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns an environment variable as duration or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
