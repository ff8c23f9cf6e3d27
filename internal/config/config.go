package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m", "1h"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m", "30m"
}

// AuthConfig holds the shared-secret credentials accepted on write endpoints
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// ImagesConfig holds cover image storage configuration
type ImagesConfig struct {
	// Dir is the directory cover files are written to
	Dir string `mapstructure:"dir"`
	// BaseURL is the public URL prefix the stored files are served under
	BaseURL string `mapstructure:"base_url"`
}

// MakerWorldConfig holds the printer cloud API configuration
type MakerWorldConfig struct {
	APIURL string `mapstructure:"api_url"`
	Token  string `mapstructure:"token"`
	Limit  int    `mapstructure:"limit"`
}

// IngestConfig holds the scraper's target API configuration
type IngestConfig struct {
	APIURL string `mapstructure:"api_url"`
	APIKey string `mapstructure:"api_key"`
}

// RateLimitConfig paces outbound requests to third-party services
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	PoolSize  int `mapstructure:"pool_size"`
	QueueSize int `mapstructure:"queue_size"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	Auth       AuthConfig     `mapstructure:"auth"`
	Images     ImagesConfig   `mapstructure:"images"`
}

// ScraperConfig holds configuration for the print-history scraper
type ScraperConfig struct {
	BaseConfig   `mapstructure:",squash"`
	MakerWorld   MakerWorldConfig `mapstructure:"makerworld"`
	Ingest       IngestConfig     `mapstructure:"ingest"`
	Interval     time.Duration    `mapstructure:"interval"`
	HTTPTimeout  time.Duration    `mapstructure:"http_timeout"`
	MirrorCovers bool             `mapstructure:"mirror_covers"`
	RateLimit    RateLimitConfig  `mapstructure:"rate_limit"`
	Worker       WorkerConfig     `mapstructure:"worker"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("images.dir", "data/covers")
	v.SetDefault("images.base_url", "/covers")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if config.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	return &config, nil
}

// LoadScraperConfig loads configuration for the print-history scraper
func LoadScraperConfig(configFile string, envPath string) (*ScraperConfig, error) {
	v := configureViper("scraper", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("makerworld.api_url", "https://makerworld.com/api/v1/user-service/my/tasks")
	v.SetDefault("makerworld.limit", 100)
	v.SetDefault("ingest.api_url", "http://localhost:8080")
	v.SetDefault("interval", "15m")
	v.SetDefault("http_timeout", "30s")
	v.SetDefault("mirror_covers", false)
	v.SetDefault("rate_limit.rps", 2)
	v.SetDefault("rate_limit.burst", 4)
	v.SetDefault("worker.pool_size", 8)
	v.SetDefault("worker.queue_size", 128)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config ScraperConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.MakerWorld.Token == "" {
		return nil, errors.New("makerworld.token is required")
	}
	if config.Ingest.APIKey == "" {
		return nil, errors.New("ingest.api_key is required")
	}

	return &config, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/api/, cmd/scraper/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("PRINTSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars binds every known config key so AutomaticEnv picks them up
// even when no config file sets them
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Auth
		"auth.api_keys",
		// Images
		"images.dir",
		"images.base_url",
		// MakerWorld
		"makerworld.api_url",
		"makerworld.token",
		"makerworld.limit",
		// Ingest
		"ingest.api_url",
		"ingest.api_key",
		// Scraper
		"interval",
		"http_timeout",
		"mirror_covers",
		"rate_limit.rps",
		"rate_limit.burst",
		"worker.pool_size",
		"worker.queue_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment files from the given path
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
