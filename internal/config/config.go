package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIBaseURL        string        `mapstructure:"api_base_url"`
	APITimeoutSeconds int64         `mapstructure:"api_timeout_seconds"`
	APITimeout        time.Duration `mapstructure:"-"`
	BypassHeaderName  string        `mapstructure:"bypass_header_name"`
	BypassHeaderValue string        `mapstructure:"bypass_header_value"`
	InitData          string        `mapstructure:"init_data"`

	TownsFile    string `mapstructure:"towns_file"`
	DefaultTown  string `mapstructure:"default_town"`
	ActivityFile string `mapstructure:"activity_file"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	MockListenAddr string `mapstructure:"mock_listen_addr"`
	MockJWTSecret  string `mapstructure:"mock_jwt_secret"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "meetfeed")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "")
	v.SetDefault("api_timeout_seconds", 0)
	v.SetDefault("bypass_header_name", "ngrok-skip-browser-warning")
	v.SetDefault("bypass_header_value", "true")
	v.SetDefault("init_data", "")
	v.SetDefault("towns_file", "./configs/towns.yaml")
	v.SetDefault("default_town", "Москва")
	v.SetDefault("activity_file", "")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/swipes.db")
	v.SetDefault("storage_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))
	v.SetDefault("mock_listen_addr", ":8080")
	v.SetDefault("mock_jwt_secret", "meetfeed-dev-secret")

	v.AutomaticEnv()
	// TMA_INIT_DATA is the name Telegram tooling uses.
	_ = v.BindEnv("init_data", "TMA_INIT_DATA", "INIT_DATA")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// zero keeps the transport default
	if cfg.APITimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid api_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.APITimeout = time.Duration(cfg.APITimeoutSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// Redacted returns a copy safe to log: secrets and init data are masked.
func (c Config) Redacted() Config {
	if c.InitData != "" {
		c.InitData = "***"
	}
	if c.MockJWTSecret != "" {
		c.MockJWTSecret = "***"
	}
	return c
}
