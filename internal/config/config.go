// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.atolye/config.yaml, or ./config.yaml)
//  3. Default values
//
// Error handling uses sentinel errors so callers can match with errors.Is.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Defaults for the editing workspace. The debounce window groups rapid
// keystrokes into one undo step; the depth bounds how far back undo goes.
const (
	DefaultHistoryDepth = 50
	DefaultDebounceMS   = 400
)

// Config stores application configuration.
type Config struct {
	// Server configuration (serve mode).
	Addr        string   `mapstructure:"addr" json:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"`

	// Per-client rate limiting.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" json:"rate_limit_burst"`

	// Model configuration. GEMINI_API_KEY is read by the genai client
	// directly, not through this struct.
	ModelName  string `mapstructure:"model_name" json:"model_name"`
	ImageModel string `mapstructure:"image_model" json:"image_model"`

	// DatabaseURL selects the persistence backend: a postgres:// URL
	// enables the durable store, empty keeps everything in memory.
	DatabaseURL string `mapstructure:"database_url" json:"database_url"`

	// Workspace tuning.
	HistoryDepth int `mapstructure:"history_depth" json:"history_depth"`
	DebounceMS   int `mapstructure:"debounce_ms" json:"debounce_ms"`

	// Logging.
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load reads configuration from defaults, config file, and environment.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	configDir := filepath.Join(home, ".atolye")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("trust_proxy", false)

	v.SetDefault("rate_limit_rps", 10.0)
	v.SetDefault("rate_limit_burst", 30)

	v.SetDefault("model_name", "gemini-3-flash-preview")
	v.SetDefault("image_model", "gemini-2.5-flash-image")

	v.SetDefault("history_depth", DefaultHistoryDepth)
	v.SetDefault("debounce_ms", DefaultDebounceMS)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment overrides explicitly. Hardcoded keys
// cannot fail to bind; a panic here is a bug, not a runtime condition.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("addr", "ATOLYE_ADDR")
	mustBind("cors_origins", "ATOLYE_CORS_ORIGINS")
	mustBind("trust_proxy", "ATOLYE_TRUST_PROXY")
	mustBind("rate_limit_rps", "ATOLYE_RATE_LIMIT_RPS")
	mustBind("rate_limit_burst", "ATOLYE_RATE_LIMIT_BURST")
	mustBind("model_name", "ATOLYE_MODEL_NAME")
	mustBind("image_model", "ATOLYE_IMAGE_MODEL")
	mustBind("database_url", "DATABASE_URL")
	mustBind("history_depth", "ATOLYE_HISTORY_DEPTH")
	mustBind("debounce_ms", "ATOLYE_DEBOUNCE_MS")
	mustBind("log_level", "ATOLYE_LOG_LEVEL")
	mustBind("log_json", "ATOLYE_LOG_JSON")
}
