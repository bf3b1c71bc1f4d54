package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type ServiceConfig struct {
	BaseURL string
	Secret  string
}

type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", c.User, c.Password, c.Host, c.Port, c.Database)
}

type Config struct {
	App struct {
		Port     string
		Env      string
		LogLevel string
		// TraceExporter is "none" or "stdout".
		TraceExporter string
	}
	MySQL    MySQLConfig
	Redis    struct{ Addr string }
	RabbitMQ struct {
		URL      string
		Exchange string
	}

	Users ServiceConfig
	Books ServiceConfig
	Cart  ServiceConfig

	UpstreamTimeout    time.Duration
	CartTimeout        time.Duration
	BookCacheTTL       time.Duration
	CatalogConcurrency int
}

// Load reads an optional .env file at path and then the process environment.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = getEnv("APP_PORT", "8008")
	cfg.App.Env = getEnv("APP_ENV", "production")
	cfg.App.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.App.TraceExporter = getEnv("TRACE_EXPORTER", "none")

	var missing []string
	require := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.MySQL = MySQLConfig{
		User:     require("MYSQL_USER"),
		Password: os.Getenv("MYSQL_PASSWORD"),
		Host:     require("MYSQL_HOST"),
		Port:     getEnv("MYSQL_PORT", "3306"),
		Database: require("MYSQL_DATABASE"),
	}

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	cfg.RabbitMQ.Exchange = getEnv("RABBITMQ_EXCHANGE", "order.exchange")

	cfg.Users = ServiceConfig{BaseURL: require("USERS_SERVICE_BASE_URL"), Secret: os.Getenv("USERS_SERVICE_SECRET")}
	cfg.Books = ServiceConfig{BaseURL: require("BOOKS_SERVICE_BASE_URL"), Secret: os.Getenv("BOOKS_SERVICE_SECRET")}
	cfg.Cart = ServiceConfig{BaseURL: os.Getenv("CART_SERVICE_BASE_URL"), Secret: os.Getenv("CART_SERVICE_SECRET")}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %v", missing)
	}

	var err error
	if cfg.UpstreamTimeout, err = getDuration("UPSTREAM_TIMEOUT", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.CartTimeout, err = getDuration("CART_TIMEOUT", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.BookCacheTTL, err = getDuration("BOOK_CACHE_TTL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CatalogConcurrency, err = getInt("CATALOG_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.CatalogConcurrency < 1 {
		return nil, fmt.Errorf("CATALOG_CONCURRENCY must be positive, got %d", cfg.CatalogConcurrency)
	}

	return cfg, nil
}

func (c *Config) Development() bool {
	return c.App.Env == "development" || c.App.Env == "local"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
