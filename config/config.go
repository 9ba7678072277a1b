// Package config provides configuration management and environment variable handling for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig  `json:"database"`
	Server    ServerConfig    `json:"server"`
	Security  SecurityConfig  `json:"security"`
	JWT       JWTConfig       `json:"jwt"`
	ShortLink ShortLinkConfig `json:"short_link"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Logging   LoggingConfig   `json:"logging"`
	Metrics   MetricsConfig   `json:"metrics"`
	Cache     CacheConfig     `json:"cache"`
	Assets    AssetConfig     `json:"assets"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type ServerConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	BodyLimit         int           `json:"body_limit"`
	ProxyHeader       string        `json:"proxy_header"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	EnableCompression bool          `json:"enable_compression"`
}

type SecurityConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Coarse per-IP request ceiling applied in front of the domain limiter
	GlobalRateLimit int           `json:"global_rate_limit"`
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

type JWTConfig struct {
	SecretKey       string        `json:"secret_key"`
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
	Issuer          string        `json:"issuer"`
	Audience        string        `json:"audience"`
}

// ShortLinkConfig controls the public redirect surface
type ShortLinkConfig struct {
	// BaseURL is the public prefix short URLs are built from, e.g.
	// "https://go.example.com/s"
	BaseURL string `json:"base_url"`
}

// RateLimitConfig declares per-operation budgets as "max/window" pairs, e.g.
// "event_create" -> 10 per minute
type RateLimitConfig struct {
	EventCreateMax     int           `json:"event_create_max"`
	EventCreateWindow  time.Duration `json:"event_create_window"`
	ShortLinkSetMax    int           `json:"short_link_set_max"`
	ShortLinkSetWindow time.Duration `json:"short_link_set_window"`
	DefaultMax         int           `json:"default_max"`
	DefaultWindow      time.Duration `json:"default_window"`
}

type LoggingConfig struct {
	Output     string `json:"output"` // "stdout" or "file"
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type CacheConfig struct {
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	RedisPrefix   string `json:"redis_prefix"`
}

// AssetConfig points at the S3-compatible bucket event pages live in
type AssetConfig struct {
	Enabled        bool   `json:"enabled"`
	Endpoint       string `json:"endpoint"`
	AccessKey      string `json:"access_key"`
	SecretKey      string `json:"secret_key"`
	UseSSL         bool   `json:"use_ssl"`
	Region         string `json:"region"`
	Bucket         string `json:"bucket"`
	TemplateObject string `json:"template_object"`
	PublicBaseURL  string `json:"public_base_url"`
}

// Load reads configuration from the environment, with .env as a fallback
// source for unset variables.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "eventdesk"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
		},
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024),
			ProxyHeader:       getEnvString("SERVER_PROXY_HEADER", "X-Real-IP"),
			TrustedProxies:    getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
		},
		Security: SecurityConfig{
			AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
			CORSMaxAge:       getEnvInt("CORS_MAX_AGE", 86400),
			GlobalRateLimit:  getEnvInt("GLOBAL_RATE_LIMIT", 300),
			RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		JWT: JWTConfig{
			SecretKey:       getEnvString("JWT_SECRET_KEY", ""),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
			Issuer:          getEnvString("JWT_ISSUER", "eventdesk"),
			Audience:        getEnvString("JWT_AUDIENCE", "eventdesk-api"),
		},
		ShortLink: ShortLinkConfig{
			BaseURL: getEnvString("SHORT_LINK_BASE_URL", "http://localhost:8080/s"),
		},
		RateLimit: RateLimitConfig{
			EventCreateMax:     getEnvInt("RATE_LIMIT_EVENT_CREATE_MAX", 10),
			EventCreateWindow:  getEnvDuration("RATE_LIMIT_EVENT_CREATE_WINDOW", time.Minute),
			ShortLinkSetMax:    getEnvInt("RATE_LIMIT_SHORT_LINK_SET_MAX", 60),
			ShortLinkSetWindow: getEnvDuration("RATE_LIMIT_SHORT_LINK_SET_WINDOW", time.Minute),
			DefaultMax:         getEnvInt("RATE_LIMIT_DEFAULT_MAX", 30),
			DefaultWindow:      getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		},
		Logging: LoggingConfig{
			Output:     getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:   getEnvString("LOG_FILE_PATH", "/var/log/eventdesk/app.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnvString("CACHE_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnvString("CACHE_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix:   getEnvString("CACHE_REDIS_PREFIX", "eventdesk"),
		},
		Assets: AssetConfig{
			Enabled:        getEnvBool("ASSETS_ENABLED", false),
			Endpoint:       getEnvString("ASSETS_ENDPOINT", "localhost:9000"),
			AccessKey:      getEnvString("ASSETS_ACCESS_KEY", ""),
			SecretKey:      getEnvString("ASSETS_SECRET_KEY", ""),
			UseSSL:         getEnvBool("ASSETS_USE_SSL", false),
			Region:         getEnvString("ASSETS_REGION", ""),
			Bucket:         getEnvString("ASSETS_BUCKET", "eventdesk-pages"),
			TemplateObject: getEnvString("ASSETS_TEMPLATE_OBJECT", "templates/event-page.html"),
			PublicBaseURL:  getEnvString("ASSETS_PUBLIC_BASE_URL", "http://localhost:9000/eventdesk-pages"),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration
func Validate(cfg *Config) error {
	var errors []string

	if cfg.Database.Host == "" {
		errors = append(errors, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errors = append(errors, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errors = append(errors, "DB_USER is required")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must be positive")
	}

	if cfg.JWT.SecretKey == "" {
		errors = append(errors, "JWT_SECRET_KEY is required")
	} else if len(cfg.JWT.SecretKey) < 32 {
		errors = append(errors, "JWT_SECRET_KEY must be at least 32 characters long")
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		errors = append(errors, "JWT_ACCESS_TOKEN_TTL must be positive")
	}

	if cfg.ShortLink.BaseURL == "" {
		errors = append(errors, "SHORT_LINK_BASE_URL is required")
	} else if !strings.HasPrefix(cfg.ShortLink.BaseURL, "http://") && !strings.HasPrefix(cfg.ShortLink.BaseURL, "https://") {
		errors = append(errors, "SHORT_LINK_BASE_URL must be an absolute http(s) URL")
	}

	if cfg.RateLimit.DefaultMax <= 0 {
		errors = append(errors, "RATE_LIMIT_DEFAULT_MAX must be positive")
	}
	if cfg.RateLimit.DefaultWindow <= 0 {
		errors = append(errors, "RATE_LIMIT_DEFAULT_WINDOW must be positive")
	}

	if cfg.Logging.Output != "stdout" && cfg.Logging.Output != "file" {
		errors = append(errors, "LOG_OUTPUT must be stdout or file")
	}
	if cfg.Logging.Output == "file" && cfg.Logging.FilePath == "" {
		errors = append(errors, "LOG_FILE_PATH is required when LOG_OUTPUT is file")
	}

	if cfg.Assets.Enabled {
		if cfg.Assets.Endpoint == "" {
			errors = append(errors, "ASSETS_ENDPOINT is required when assets are enabled")
		}
		if cfg.Assets.AccessKey == "" || cfg.Assets.SecretKey == "" {
			errors = append(errors, "ASSETS_ACCESS_KEY and ASSETS_SECRET_KEY are required when assets are enabled")
		}
		if cfg.Assets.Bucket == "" {
			errors = append(errors, "ASSETS_BUCKET is required when assets are enabled")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}

// DSN builds the postgres connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
