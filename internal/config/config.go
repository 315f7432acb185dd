package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Store      StoreConfig
	Pagination PaginationConfig
	Security   SecurityConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// StoreConfig selects the document store backend: "mongo" or "memory".
type StoreConfig struct {
	Driver string
}

type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

type SecurityConfig struct {
	BcryptCost int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type LogConfig struct {
	Level  string
	Format string
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "27017")
	v.SetDefault("DB_NAME", "users")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("PAGINATION_DEFAULT_LIMIT", 20)
	v.SetDefault("PAGINATION_MAX_LIMIT", 100)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	// APP_PORT is honoured for compatibility with older deployments.
	port := v.GetString("SERVER_PORT")
	if port == "" {
		port = v.GetString("APP_PORT")
	}
	if port == "" {
		port = "80"
	}

	dbName := v.GetString("MONGODB_DATABASE")
	if dbName == "" {
		dbName = v.GetString("DB_NAME")
	}
	uri := v.GetString("MONGODB_URI")
	if uri == "" {
		uri = fmt.Sprintf("mongodb://%s:%s/%s", v.GetString("DB_HOST"), v.GetString("DB_PORT"), dbName)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         port,
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      uri,
			Database: dbName,
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
		},
		Pagination: PaginationConfig{
			DefaultLimit: v.GetInt("PAGINATION_DEFAULT_LIMIT"),
			MaxLimit:     v.GetInt("PAGINATION_MAX_LIMIT"),
		},
		Security: SecurityConfig{
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want mongo or memory)", c.Store.Driver)
	}
	if c.Pagination.DefaultLimit < 1 {
		return fmt.Errorf("PAGINATION_DEFAULT_LIMIT must be positive")
	}
	if c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return fmt.Errorf("PAGINATION_MAX_LIMIT cannot be below PAGINATION_DEFAULT_LIMIT")
	}
	if c.MongoDB.Timeout <= 0 {
		return fmt.Errorf("MONGODB_TIMEOUT must be positive")
	}
	return nil
}
