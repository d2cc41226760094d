// Package config provides configuration for the natsio example binary.
package config

import (
	"time"

	"github.com/lumadb/natsio/pkg/natsio"
	"github.com/spf13/viper"
)

// Config holds all configuration for the example binary.
type Config struct {
	// Connection
	ServerAddr string `mapstructure:"server_addr"`

	// Keep-alive
	PingIntervalMS int `mapstructure:"ping_interval_ms"`
	PongDelayMS    int `mapstructure:"pong_delay_ms"`
	KeepAliveMS    int `mapstructure:"keep_alive_ms"`

	// Admin introspection server
	AdminAddr string `mapstructure:"admin_addr"`

	// Kafka/Redpanda relay sink
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
	RelaySubject string   `mapstructure:"relay_subject"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerAddr:     "127.0.0.1:4222",
		PingIntervalMS: 2 * 60 * 1000,
		PongDelayMS:    0,
		KeepAliveMS:    5 * 60 * 1000,
		AdminAddr:      ":8080",
		KafkaTopic:     "natsio.relay",
		RelaySubject:   "",
	}
}

// LoadConfig loads configuration from a file, applying environment
// variable overrides on top of it.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Timeouts converts the millisecond fields into a natsio.Timeouts.
func (c *Config) Timeouts() natsio.Timeouts {
	return natsio.Timeouts{
		PingInterval: time.Duration(c.PingIntervalMS) * time.Millisecond,
		PongDelay:    time.Duration(c.PongDelayMS) * time.Millisecond,
		KeepAlive:    time.Duration(c.KeepAliveMS) * time.Millisecond,
	}
}

// Validate reports whether the configuration is valid. No field is
// checked: it returns nil for every configuration.
func (c *Config) Validate() error {
	return nil
}
