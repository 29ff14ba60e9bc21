// Package config loads service configuration from config.yaml with
// environment-variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const APIVersion = "2.0.0"

type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Model struct {
		Path    string `mapstructure:"path"`
		Version string `mapstructure:"version"`
	} `mapstructure:"model"`
	Stream struct {
		TickInterval time.Duration `mapstructure:"tick_interval"`
		SensorID     string        `mapstructure:"sensor_id"`
		HistorySize  int           `mapstructure:"history_size"`
	} `mapstructure:"stream"`
	Redis struct {
		Enabled  bool          `mapstructure:"enabled"`
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

// Load reads config.yaml from path. A missing file is not fatal; the
// defaults below describe a complete working setup.
func Load(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.SetEnvPrefix("ECOPULSE")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("model.path", "models/energy_lstm_v1.h5")
	viper.SetDefault("model.version", "v1.0-lstm")
	viper.SetDefault("stream.tick_interval", time.Second)
	viper.SetDefault("stream.sensor_id", "FACILITY-001")
	viper.SetDefault("stream.history_size", 100)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttl", time.Minute)
	viper.SetDefault("cors.allowed_origins", []string{"*"})
}
