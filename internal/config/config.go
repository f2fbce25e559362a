package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for docchat
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Stream  StreamConfig  `mapstructure:"stream"`
}

// BackendConfig holds the remote backend endpoints
type BackendConfig struct {
	ChatURL        string `mapstructure:"chat_url"`
	DocumentURL    string `mapstructure:"document_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CacheConfig holds the durable local cache configuration
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// ChatConfig holds default chat session settings
type ChatConfig struct {
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	SystemPrompt string  `mapstructure:"system_prompt"`
}

// StreamConfig holds the simulated streaming cadence
type StreamConfig struct {
	TickMillis int `mapstructure:"tick_millis"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("DOCCHAT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.chat_url", "http://localhost:5173")
	v.SetDefault("backend.document_url", "http://localhost:5173")
	v.SetDefault("backend.timeout_seconds", 30)

	v.SetDefault("cache.path", "./data/docchat.db")

	v.SetDefault("chat.model", "gpt-4o-mini")
	v.SetDefault("chat.temperature", 0.7)
	v.SetDefault("chat.system_prompt", "You are a helpful AI assistant.")

	v.SetDefault("stream.tick_millis", 50)
}

// Timeout returns the backend request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// TickInterval returns the simulated streaming tick interval
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Stream.TickMillis) * time.Millisecond
}

// DefaultSettings returns the chat settings applied to new sessions
func (c *Config) DefaultSettings() (model string, temperature float64, systemPrompt string) {
	return c.Chat.Model, c.Chat.Temperature, c.Chat.SystemPrompt
}
