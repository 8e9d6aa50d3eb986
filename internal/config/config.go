package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	Relay    RelayConfig    `mapstructure:"relay"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

// RelayConfig contains HTTP/WebSocket server settings.
type RelayConfig struct {
	Port int `mapstructure:"port"`
	// AllowedOrigins is a comma-separated list of origins permitted to open
	// websocket connections. Empty means same-host only.
	AllowedOrigins string `mapstructure:"allowed_origins"`
	// Channel is the pub/sub channel carrying progress events.
	Channel string `mapstructure:"channel"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// WorkflowConfig points at the external extraction workflow engine. Both URLs
// may be empty, in which case the job proxy endpoints respond 503.
type WorkflowConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	ResultURL  string `mapstructure:"result_url"`
}

// Addr builds the Redis dial address.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Origins splits the configured allow-list into individual origins.
func (r RelayConfig) Origins() []string {
	if r.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(r.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("relay.port", 3000)
	v.SetDefault("relay.channel", "progress")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"relay.port":            "RELAY_PORT",
		"relay.allowed_origins": "FRONTEND_URL",
		"relay.channel":         "RELAY_CHANNEL",
		"redis.host":            "REDIS_HOST",
		"redis.port":            "REDIS_PORT",
		"workflow.webhook_url":  "WORKFLOW_WEBHOOK_URL",
		"workflow.result_url":   "WORKFLOW_RESULT_URL",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.Relay.Port <= 0 {
		return errors.New("relay port must be positive")
	}
	if cfg.Relay.Channel == "" {
		return errors.New("relay channel is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	return nil
}
