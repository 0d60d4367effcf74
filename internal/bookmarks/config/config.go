package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the bookmarks module.
type Config struct {
	MongoDBURI   string `env:"MONGODB_URI,required"`
	DatabaseName string `env:"MONGODB_DATABASE" envDefault:"bookmark_sync"`

	// ChannelPrefix is the Redis pub/sub channel prefix for the change
	// stream; the owner ID is appended per subscription.
	ChannelPrefix string `env:"CHANGE_CHANNEL_PREFIX" envDefault:"bookmarks:changes"`

	Redis RedisConfig
}

// RedisConfig holds the Redis connection settings for the change stream.
type RedisConfig struct {
	Host         string `env:"REDIS_HOST" envDefault:"localhost"`
	Port         string `env:"REDIS_PORT" envDefault:"6379"`
	Password     string `env:"REDIS_PASSWORD" envDefault:""`
	Database     int    `env:"REDIS_DATABASE" envDefault:"0"`
	MaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize     int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS    bool   `env:"REDIS_ENABLE_TLS" envDefault:"false"`
}

// GetAddr returns the host:port address for the Redis connection.
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// LoadConfig loads configuration from environment variables and applies
// defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load bookmarks configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Redis); err != nil {
		return nil, errors.New("failed to load redis configuration from environment: " + err.Error())
	}

	if cfg.MongoDBURI == "" {
		return nil, errors.New("MONGODB_URI environment variable is not set")
	}
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = "bookmarks:changes"
	}

	return cfg, nil
}
