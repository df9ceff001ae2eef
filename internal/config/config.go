package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"donezo/internal/util"
)

// Config holds all application configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `mapstructure:"addr" validate:"required"`
	// MongoDBURI is the connection string for the storage engine.
	MongoDBURI string `mapstructure:"mongodb_uri" validate:"required"`
	// DBName is the database holding the Users and Tasks collections.
	DBName string `mapstructure:"db_name" validate:"required"`
	// AllowedOrigins is the comma-separated CORS origin allow-list.
	AllowedOrigins string `mapstructure:"allowed_origins" validate:"required"`
	// DNDStrict disables the upsert on drag-and-drop: moving a task whose
	// id is unknown then fails instead of creating a record.
	DNDStrict bool `mapstructure:"dnd_strict"`
	// LogLevel selects the slog level.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Origins returns the CORS allow-list as individual origins.
func (c *Config) Origins() []string {
	return util.SplitList(c.AllowedOrigins)
}

// Load reads configuration from DONEZO_* environment variables, applying
// defaults and validating the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DONEZO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":5000")
	v.SetDefault("mongodb_uri", "mongodb://localhost:27017")
	v.SetDefault("db_name", "TODO-DB")
	v.SetDefault("allowed_origins", "http://localhost:5173,http://localhost:5174")
	v.SetDefault("dnd_strict", false)
	v.SetDefault("log_level", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
