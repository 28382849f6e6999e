// Package config holds the filestore bot configuration built on top of the core config.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/filestore-bot/core/config"
	coredatabase "github.com/m3rciful/filestore-bot/core/database"
)

// Storage drivers for the settings store.
const (
	StorageSQL    = "sql"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// StorageConfig selects the settings backend and its cache.
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	// CacheSize bounds the read-through cache; 0 means 64 entries.
	CacheSize int `yaml:"cache_size" envconfig:"STORAGE_CACHE_SIZE"`
	// CacheTTLSeconds expires cached values; 0 means 5 minutes.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" envconfig:"STORAGE_CACHE_TTL_SECONDS"`
}

// CacheTTL returns the cache expiry as a duration.
func (s StorageConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// RedisConfig addresses the Redis settings backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
	Prefix   string `yaml:"prefix" envconfig:"REDIS_PREFIX"`
}

// BotConfig carries filestore specific behaviour.
type BotConfig struct {
	// DatabaseChatID is the channel posts are copied into unless overridden at runtime.
	DatabaseChatID int64  `yaml:"database_chat_id" envconfig:"DATABASE_CHAT_ID"`
	StartText      string `yaml:"start_text" envconfig:"START_TEXT"`
	ForceText      string `yaml:"force_text" envconfig:"FORCE_TEXT"`
	// PromptTimeoutSeconds bounds every prompt-and-collect interaction.
	PromptTimeoutSeconds int     `yaml:"prompt_timeout_seconds" envconfig:"PROMPT_TIMEOUT_SECONDS"`
	InitialAdmins        []int64 `yaml:"initial_admins" envconfig:"INITIAL_ADMINS"`
	InitialFsubChats     []int64 `yaml:"initial_fsub_chats" envconfig:"INITIAL_FSUB_CHATS"`
	// CaptionDelayMS waits before captioning a freshly copied post.
	CaptionDelayMS int `yaml:"caption_delay_ms" envconfig:"CAPTION_DELAY_MS"`
}

// PromptTimeout returns the prompt window as a duration.
func (b BotConfig) PromptTimeout() time.Duration {
	return time.Duration(b.PromptTimeoutSeconds) * time.Second
}

// CaptionDelay returns the caption delay as a duration.
func (b BotConfig) CaptionDelay() time.Duration {
	return time.Duration(b.CaptionDelayMS) * time.Millisecond
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	Redis    RedisConfig         `yaml:"redis"`
	Bot      BotConfig           `yaml:"bot"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

const (
	defaultStartText = "Hello {first}!\n\nI store files and hand out links to them."
	defaultForceText = "Hello {first}!\n\nJoin the channels below to use this bot."
)

// Load reads YAML and environment overrides, then validates.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the configuration and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		driver = StorageSQL
	}
	switch driver {
	case StorageSQL:
		if err := cfg.Database.Normalize(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	case StorageRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return fmt.Errorf("redis.addr is required when storage.driver is 'redis'")
		}
		if cfg.Redis.Prefix == "" {
			cfg.Redis.Prefix = "filestore:"
		}
	case StorageMemory:
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: sql, redis, memory", cfg.Storage.Driver)
	}
	cfg.Storage.Driver = driver
	if cfg.Storage.CacheSize <= 0 {
		cfg.Storage.CacheSize = 64
	}
	if cfg.Storage.CacheTTLSeconds <= 0 {
		cfg.Storage.CacheTTLSeconds = 300
	}

	if cfg.Bot.DatabaseChatID == 0 {
		return fmt.Errorf("bot.database_chat_id is required")
	}
	if cfg.Bot.PromptTimeoutSeconds <= 0 {
		cfg.Bot.PromptTimeoutSeconds = 45
	}
	if cfg.Bot.CaptionDelayMS < 0 {
		return fmt.Errorf("bot.caption_delay_ms must be >= 0")
	}
	if cfg.Bot.CaptionDelayMS == 0 {
		cfg.Bot.CaptionDelayMS = 3000
	}
	if strings.TrimSpace(cfg.Bot.StartText) == "" {
		cfg.Bot.StartText = defaultStartText
	}
	if strings.TrimSpace(cfg.Bot.ForceText) == "" {
		cfg.Bot.ForceText = defaultForceText
	}
	return nil
}
