package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Storage  StorageConfig
	Export   ExportConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	FrontendURL string
	// ManualCheckoutURL is where staff are sent to self-report a check-out.
	ManualCheckoutURL string
}

// StorageConfig describes the named disks. The "absensi" disk keeps uploaded
// photos, the "public" disk receives generated exports.
type StorageConfig struct {
	Type       string
	AbsensiDir string
	AbsensiURL string
	PublicDir  string
	PublicURL  string
}

// ExportConfig controls how long generated exports stay on the public disk.
type ExportConfig struct {
	Retention     time.Duration
	PurgeInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "absensi"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:              appPort,
		Env:               getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Timezone:          getEnv("APP_TIMEZONE", "Asia/Jakarta"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		ManualCheckoutURL: getEnv("MANUAL_CHECKOUT_URL", "/absenkeluar"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "8h"),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type:       getEnv("STORAGE_TYPE", "local"),
		AbsensiDir: getEnv("STORAGE_ABSENSI_PATH", "./storage/absensi"),
		AbsensiURL: getEnv("STORAGE_ABSENSI_URL", fmt.Sprintf("http://localhost:%d/uploads/absensi", appPort)),
		PublicDir:  getEnv("STORAGE_PUBLIC_PATH", "./storage/public"),
		PublicURL:  getEnv("STORAGE_PUBLIC_URL", fmt.Sprintf("http://localhost:%d/uploads/public", appPort)),
	}

	// Export retention
	retention, err := time.ParseDuration(getEnv("EXPORT_RETENTION", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_RETENTION: %w", err)
	}
	purgeInterval, err := time.ParseDuration(getEnv("EXPORT_PURGE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_PURGE_INTERVAL: %w", err)
	}
	config.Export = ExportConfig{
		Retention:     retention,
		PurgeInterval: purgeInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.App.Timezone == "Local" {
		return fmt.Errorf("invalid APP_TIMEZONE: use an IANA zone name instead of Local")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.Export.Retention <= 0 || c.Export.PurgeInterval <= 0 {
		return fmt.Errorf("EXPORT_RETENTION and EXPORT_PURGE_INTERVAL must be positive")
	}
	if c.Storage.Type != "local" {
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type)
	}
	if c.Storage.AbsensiDir == "" || c.Storage.PublicDir == "" {
		return fmt.Errorf("STORAGE_ABSENSI_PATH and STORAGE_PUBLIC_PATH are required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the timezone used to derive calendar dates of attendance times.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// AllowedOrigins splits FRONTEND_URL on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.App.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
