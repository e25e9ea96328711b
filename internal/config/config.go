package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix               = "ASPIRE"
	defaultHTTPAddress      = "0.0.0.0:8080"
	defaultDatabasePath     = "aspire.db"
	defaultLogLevel         = "info"
	defaultRealtimeBuffer   = 16
	defaultUploadPathPrefix = "/uploads/"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress      string
	DatabasePath     string
	LogLevel         string
	RealtimeBuffer   int
	UploadPathPrefix string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("realtime.buffer", defaultRealtimeBuffer)
	configViper.SetDefault("uploads.path_prefix", defaultUploadPathPrefix)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:      configViper.GetString("http.address"),
		DatabasePath:     configViper.GetString("database.path"),
		LogLevel:         configViper.GetString("log.level"),
		RealtimeBuffer:   configViper.GetInt("realtime.buffer"),
		UploadPathPrefix: configViper.GetString("uploads.path_prefix"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.RealtimeBuffer <= 0 {
		return fmt.Errorf("realtime.buffer must be positive")
	}
	if !strings.HasPrefix(c.UploadPathPrefix, "/") || !strings.HasSuffix(c.UploadPathPrefix, "/") {
		return fmt.Errorf("uploads.path_prefix must start and end with a slash")
	}
	return nil
}
