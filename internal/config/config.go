// Package config loads the server configuration with Viper. Values come
// from an optional config.yaml in the working directory (or the directory
// named by SNIPPETIFY_CONFIG_DIR), overridden by SNIPPETIFY_* environment
// variables. A missing config file is not an error — every key has a
// default or can come from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Environment postures. Development exposes error detail in responses;
// production never does.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port        int    `mapstructure:"port"`
	DBPath      string `mapstructure:"db_path"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// Development reports whether the development posture is active.
func (c Config) Development() bool {
	return c.Environment == EnvDevelopment
}

// Load reads the configuration from configDir (empty means the working
// directory), applying defaults and environment overrides.
//
// Environment variables use the SNIPPETIFY_ prefix with underscores, e.g.
// SNIPPETIFY_DB_PATH, SNIPPETIFY_JWT_SECRET.
func Load(configDir string) (Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "data/snippetify.db")
	v.SetDefault("environment", EnvProduction)
	v.SetDefault("log_level", "info")
	// Registered with an empty default so AutomaticEnv can populate it;
	// Unmarshal only sees keys viper already knows about.
	v.SetDefault("jwt_secret", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configDir == "" {
		configDir = "."
	}
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("SNIPPETIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: reading config file: %w", err)
		}
		// No config file is fine; defaults + env cover everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if cfg.Environment != EnvDevelopment && cfg.Environment != EnvProduction {
		return Config{}, fmt.Errorf("config: environment must be %q or %q, got %q",
			EnvDevelopment, EnvProduction, cfg.Environment)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: jwt_secret is required (set SNIPPETIFY_JWT_SECRET)")
	}

	return cfg, nil
}
