package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	ORS      ORSConfig      `yaml:"ors" mapstructure:"ors"`
	Session  SessionConfig  `yaml:"session" mapstructure:"session"`
	Defaults DefaultsConfig `yaml:"defaults" mapstructure:"defaults"`
	Limits   LimitsConfig   `yaml:"limits" mapstructure:"limits"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ORSConfig holds OpenRouteService API settings.
type ORSConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Country     string  `yaml:"country" mapstructure:"country"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SessionConfig configures where the working session is persisted.
type SessionConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DefaultsConfig seeds a brand-new session.
type DefaultsConfig struct {
	Lat     float64 `yaml:"lat" mapstructure:"lat"`
	Lon     float64 `yaml:"lon" mapstructure:"lon"`
	Minutes int     `yaml:"minutes" mapstructure:"minutes"`
	Mode    string  `yaml:"mode" mapstructure:"mode"`
}

// LimitsConfig bounds user-selectable parameters.
type LimitsConfig struct {
	MinMinutes int `yaml:"min_minutes" mapstructure:"min_minutes"`
	MaxMinutes int `yaml:"max_minutes" mapstructure:"max_minutes"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MissingCredential reports whether no ORS API key is configured.
func (c *Config) MissingCredential() bool {
	return strings.TrimSpace(c.ORS.APIKey) == ""
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ors.api_key", "")
	v.SetDefault("ors.base_url", "https://api.openrouteservice.org")
	v.SetDefault("ors.country", "FR")
	v.SetDefault("ors.timeout_secs", 30)
	v.SetDefault("ors.rate_limit", 1.0)
	v.SetDefault("session.path", "reach.db")
	v.SetDefault("defaults.lat", 48.858370)
	v.SetDefault("defaults.lon", 2.294481)
	v.SetDefault("defaults.minutes", 10)
	v.SetDefault("defaults.mode", "walking")
	v.SetDefault("limits.min_minutes", 1)
	v.SetDefault("limits.max_minutes", 60)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.Limits.MinMinutes < 1 || cfg.Limits.MaxMinutes < cfg.Limits.MinMinutes {
		return nil, eris.Errorf("config: invalid minute limits [%d, %d]", cfg.Limits.MinMinutes, cfg.Limits.MaxMinutes)
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
