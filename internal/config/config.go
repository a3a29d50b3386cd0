package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	LogLevel    string
	Backend     BackendConfig
	Checkout    CheckoutConfig
	Redis       RedisConfig
	DevServer   DevServerConfig
}

type BackendConfig struct {
	BaseURL   string
	AuthToken string
}

type CheckoutConfig struct {
	// SubmitTimeout bounds each network call of a checkout attempt
	SubmitTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DevServerConfig struct {
	Port string
	// APIKeyHash is the bcrypt hash incoming X-API-Key values are
	// verified against; empty disables auth (local development)
	APIKeyHash string
	// Gateway credentials the emulated backend signs/verifies with
	GatewayKeyID  string
	GatewaySecret string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CHECKOUT_TIMEOUT", "12s")
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:8080")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("DEVSERVER_PORT", "8080")
	viper.SetDefault("DEVSERVER_GATEWAY_KEY_ID", "rzp_test_devserver")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	submitTimeout, err := time.ParseDuration(getEnvOrViper("CHECKOUT_TIMEOUT", "12s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_TIMEOUT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrViper("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Backend: BackendConfig{
			BaseURL:   getEnvOrViper("BACKEND_BASE_URL", "http://localhost:8080"),
			AuthToken: getEnvOrViper("BACKEND_AUTH_TOKEN", ""),
		},
		Checkout: CheckoutConfig{
			SubmitTimeout: submitTimeout,
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DevServer: DevServerConfig{
			Port:          getEnvOrViper("DEVSERVER_PORT", "8080"),
			APIKeyHash:    getEnvOrViper("DEVSERVER_API_KEY_HASH", ""),
			GatewayKeyID:  getEnvOrViper("DEVSERVER_GATEWAY_KEY_ID", "rzp_test_devserver"),
			GatewaySecret: getEnvOrViper("DEVSERVER_GATEWAY_SECRET", "devserver-secret"),
		},
	}

	// Validate required fields
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if cfg.DevServer.GatewaySecret == "" {
		return nil, fmt.Errorf("DEVSERVER_GATEWAY_SECRET is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
