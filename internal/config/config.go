package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the client needs to reach and poll the server.
type Config struct {
	BaseURL           string        `yaml:"base_url"`
	HTTPTimeout       time.Duration `yaml:"http_timeout"`
	ChatPollInterval  time.Duration `yaml:"chat_poll_interval"`
	AdminPollInterval time.Duration `yaml:"admin_poll_interval"`
	LogLevel          string        `yaml:"log_level"`
	MetricsAddr       string        `yaml:"metrics_addr"`
}

// Defaults mirror the server's page behavior: chat pages poll every 3s,
// admin pages every 5s.
func defaults() *Config {
	return &Config{
		BaseURL:           "http://localhost:8080",
		HTTPTimeout:       10 * time.Second,
		ChatPollInterval:  3 * time.Second,
		AdminPollInterval: 5 * time.Second,
		LogLevel:          "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (env wins).
func Load() (*Config, error) {
	// Ignore error if .env file doesn't exist (e.g. in production)
	_ = godotenv.Load()

	cfg := defaults()

	path := GetEnv("CONFIG_FILE", "")
	if path == "" {
		if _, err := os.Stat("chat-client.yaml"); err == nil {
			path = "chat-client.yaml"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.BaseURL = GetEnv("BASE_URL", cfg.BaseURL)
	cfg.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.ChatPollInterval = getEnvDuration("CHAT_POLL_INTERVAL", cfg.ChatPollInterval)
	cfg.AdminPollInterval = getEnvDuration("ADMIN_POLL_INTERVAL", cfg.AdminPollInterval)
	cfg.LogLevel = GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.MetricsAddr = GetEnv("METRICS_ADDR", cfg.MetricsAddr)

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL must not be empty")
	}
	return cfg, nil
}

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	// Plain numbers are treated as seconds.
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
