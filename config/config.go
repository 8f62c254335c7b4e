// Package config loads MedMesh configuration from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/medmesh/internal/imageutil"
	"github.com/hupe1980/medmesh/logging"
	"github.com/hupe1980/medmesh/tracing"
)

// EnvPrefix prefixes every environment override, e.g. MEDMESH_MODEL_PROVIDER.
const EnvPrefix = "MEDMESH"

// Supported model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config holds all configuration for MedMesh.
type Config struct {
	Model     ModelConfig    `mapstructure:"model"`
	OpenAI    OpenAIConfig   `mapstructure:"openai"`
	Anthropic APIKeyConfig   `mapstructure:"anthropic"`
	Gemini    APIKeyConfig   `mapstructure:"gemini"`
	Repair    RepairConfig   `mapstructure:"repair"`
	Engine    EngineConfig   `mapstructure:"engine"`
	Server    ServerConfig   `mapstructure:"server"`
	Log       LogConfig      `mapstructure:"log"`
	Tracing   tracing.Config `mapstructure:"tracing"`
	Database  DatabaseConfig `mapstructure:"database"`
}

// ModelConfig selects the generation backend.
type ModelConfig struct {
	// Provider is one of openai, anthropic or gemini.
	Provider string `mapstructure:"provider"`
	// ID is the provider's model identifier. Empty uses the provider default.
	ID          string  `mapstructure:"id"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// APIKeyConfig holds a provider API key.
type APIKeyConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// RepairConfig toggles response repair tiers.
type RepairConfig struct {
	Lenient bool `mapstructure:"lenient"`
}

// EngineConfig mirrors engine.Config.
type EngineConfig struct {
	MaxConcurrentInvocations int           `mapstructure:"max_concurrent_invocations"`
	GenerationTimeout        time.Duration `mapstructure:"generation_timeout"`
	MaxModelCalls            int           `mapstructure:"max_model_calls"`
}

// ServerConfig holds HTTP boundary settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	MaxImagePixels  int64         `mapstructure:"max_image_pixels"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// DatabaseConfig selects the audit store. An empty URL keeps records in memory.
type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	Table       string `mapstructure:"table"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	// HistoryCapacity bounds the in-memory store.
	HistoryCapacity int `mapstructure:"history_capacity"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model.provider", ProviderOpenAI)
	v.SetDefault("model.id", "")
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.max_tokens", 4096)

	v.SetDefault("repair.lenient", false)

	v.SetDefault("engine.max_concurrent_invocations", 10)
	v.SetDefault("engine.generation_timeout", "0s")
	v.SetDefault("engine.max_model_calls", 2)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_bytes", 20<<20)
	v.SetDefault("server.max_image_pixels", imageutil.DefaultMaxPixels)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.add_source", false)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.service_name", "medmesh")
	v.SetDefault("tracing.service_version", "")

	v.SetDefault("database.url", "")
	v.SetDefault("database.table", "analyses")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.history_capacity", 1000)
}

// Load reads configuration. Precedence (highest to lowest):
//  1. Environment variables (MEDMESH_*, plus the provider key variables)
//  2. The YAML file at path, when path is not empty
//  3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string][]string{
		"openai.api_key":    {"MEDMESH_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"anthropic.api_key": {"MEDMESH_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"gemini.api_key":    {"MEDMESH_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"database.url":      {"MEDMESH_DATABASE_URL", "DATABASE_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references in secrets.
	cfg.OpenAI.APIKey = os.ExpandEnv(cfg.OpenAI.APIKey)
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	cfg.Gemini.APIKey = os.ExpandEnv(cfg.Gemini.APIKey)
	cfg.Database.URL = os.ExpandEnv(cfg.Database.URL)

	cfg.Model.Provider = strings.ToLower(strings.TrimSpace(cfg.Model.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("model.provider: unsupported provider %q", c.Model.Provider))
	}

	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		errs = append(errs, fmt.Errorf("model.temperature: %v out of range [0, 2]", c.Model.Temperature))
	}
	if c.Engine.MaxConcurrentInvocations < 0 {
		errs = append(errs, errors.New("engine.max_concurrent_invocations: must not be negative"))
	}
	if c.Engine.GenerationTimeout < 0 {
		errs = append(errs, errors.New("engine.generation_timeout: must not be negative"))
	}
	if c.Engine.MaxModelCalls < 0 {
		errs = append(errs, errors.New("engine.max_model_calls: must not be negative"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes: must be positive"))
	}
	if c.Server.MaxImagePixels <= 0 {
		errs = append(errs, errors.New("server.max_image_pixels: must be positive"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported format %q", c.Log.Format))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_rate: %v out of range [0, 1]", c.Tracing.SampleRate))
	}

	return errors.Join(errs...)
}

// APIKey returns the key configured for the selected provider.
func (c *Config) APIKey() string {
	switch c.Model.Provider {
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	case ProviderGemini:
		return c.Gemini.APIKey
	default:
		return ""
	}
}
