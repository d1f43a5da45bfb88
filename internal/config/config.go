// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/jonathan/docpack/internal/llm"
	"github.com/jonathan/docpack/internal/pipeline"
	"github.com/jonathan/docpack/internal/prompts"
)

// EnvPrefix is the prefix for environment overrides, e.g. DOCPACK_PORT.
const EnvPrefix = "DOCPACK"

// Config represents the application configuration. It can be loaded from a
// JSON or YAML file and overridden from DOCPACK_* environment variables.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// Credentials and backends
	APIKey        string `mapstructure:"api_key" json:"api_key,omitempty"`               // Gemini API key
	DatabaseURL   string `mapstructure:"database_url" json:"database_url,omitempty"`     // PostgreSQL connection URL
	RedisAddr     string `mapstructure:"redis_addr" json:"redis_addr,omitempty"`         // Redis address for progress fan-out
	RedisPassword string `mapstructure:"redis_password" json:"redis_password,omitempty"` // Redis password
	RedisDB       int    `mapstructure:"redis_db" json:"redis_db,omitempty"`             // Redis logical database
	RedisChannel  string `mapstructure:"redis_channel" json:"redis_channel,omitempty"`   // Redis progress channel

	// Inputs
	MarketDataFile string `mapstructure:"market_data_file" json:"market_data_file,omitempty"` // YAML/JSON market table

	// Models
	ModelLite     string  `mapstructure:"model_lite" json:"model_lite,omitempty"`
	ModelStandard string  `mapstructure:"model_standard" json:"model_standard,omitempty"`
	ModelAdvanced string  `mapstructure:"model_advanced" json:"model_advanced,omitempty"`
	Temperature   float64 `mapstructure:"temperature" json:"temperature,omitempty"`
	MaxRetries    int     `mapstructure:"max_retries" json:"max_retries,omitempty"`

	// Excerpt sizes: per document for package analysis, and per prior
	// document for downstream prompts.
	ExcerptChars int `mapstructure:"excerpt_chars" json:"excerpt_chars,omitempty"`
	PriorExcerpt int `mapstructure:"prior_excerpt" json:"prior_excerpt,omitempty"`

	MarketCacheLen int `mapstructure:"market_cache_len" json:"market_cache_len,omitempty"`

	// Quality and recommendations
	MinWords           int `mapstructure:"min_words" json:"min_words,omitempty"`
	MaxWords           int `mapstructure:"max_words" json:"max_words,omitempty"`
	LowQualityScore    int `mapstructure:"low_quality_score" json:"low_quality_score,omitempty"`
	MaxRecommendations int `mapstructure:"max_recommendations" json:"max_recommendations,omitempty"`

	// Server
	Port int `mapstructure:"port" json:"port,omitempty"`

	// Behavior
	LogMode       string  `mapstructure:"log_mode" json:"log_mode,omitempty"`   // development or production
	LogLevel      string  `mapstructure:"log_level" json:"log_level,omitempty"` // debug, info, warn, error
	Tracing       bool    `mapstructure:"tracing" json:"tracing,omitempty"`
	TraceExporter string  `mapstructure:"trace_exporter" json:"trace_exporter,omitempty"`
	TraceRatio    float64 `mapstructure:"trace_ratio" json:"trace_ratio,omitempty"`
	Verbose       bool    `mapstructure:"verbose" json:"verbose,omitempty"`
}

// keys lists every mapstructure key so environment-only values are seen
// by viper.Unmarshal.
var keys = []string{
	"api_key", "database_url", "redis_addr", "redis_password", "redis_db", "redis_channel",
	"market_data_file",
	"model_lite", "model_standard", "model_advanced", "temperature", "max_retries",
	"excerpt_chars", "prior_excerpt", "market_cache_len",
	"min_words", "max_words", "low_quality_score", "max_recommendations",
	"port",
	"log_mode", "log_level", "tracing", "trace_exporter", "trace_ratio", "verbose",
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		RedisChannel:       "docpack:progress",
		MaxRetries:         3,
		ExcerptChars:       500,
		PriorExcerpt:       1500,
		MarketCacheLen:     256,
		MinWords:           150,
		MaxWords:           2500,
		LowQualityScore:    70,
		MaxRecommendations: 6,
		Port:               8080,
		LogMode:            "development",
		LogLevel:           "info",
		TraceExporter:      "stdout",
		TraceRatio:         1,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, then applies
// DOCPACK_* environment overrides. An empty path loads the environment only.
// Values absent from both are left zero; see MergeWithDefaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", k, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}
	if c.TraceRatio < 0 || c.TraceRatio > 1 {
		return fmt.Errorf("config error: 'trace_ratio' must be between 0 and 1")
	}

	for name, n := range map[string]int{
		"redis_db":            c.RedisDB,
		"max_retries":         c.MaxRetries,
		"excerpt_chars":       c.ExcerptChars,
		"prior_excerpt":       c.PriorExcerpt,
		"market_cache_len":    c.MarketCacheLen,
		"min_words":           c.MinWords,
		"max_words":           c.MaxWords,
		"max_recommendations": c.MaxRecommendations,
	} {
		if n < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", name)
		}
	}

	if c.MinWords > 0 && c.MaxWords > 0 && c.MinWords > c.MaxWords {
		return fmt.Errorf("config error: 'min_words' must not exceed 'max_words'")
	}
	if c.LowQualityScore < 0 || c.LowQualityScore > 100 {
		return fmt.Errorf("config error: 'low_quality_score' must be between 0 and 100")
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
	}

	if c.MarketDataFile != "" {
		if _, err := os.Stat(c.MarketDataFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: market data file not found: %s", c.MarketDataFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. Bool fields cannot distinguish unset from false and are not
// merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	mergeInt := func(dst *int, def int) {
		if *dst == 0 {
			*dst = def
		}
	}
	mergeFloat := func(dst *float64, def float64) {
		if *dst == 0 {
			*dst = def
		}
	}

	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.RedisAddr, defaults.RedisAddr)
	mergeString(&result.RedisPassword, defaults.RedisPassword)
	mergeString(&result.RedisChannel, defaults.RedisChannel)
	mergeString(&result.MarketDataFile, defaults.MarketDataFile)
	mergeString(&result.ModelLite, defaults.ModelLite)
	mergeString(&result.ModelStandard, defaults.ModelStandard)
	mergeString(&result.ModelAdvanced, defaults.ModelAdvanced)
	mergeString(&result.LogMode, defaults.LogMode)
	mergeString(&result.LogLevel, defaults.LogLevel)
	mergeString(&result.TraceExporter, defaults.TraceExporter)

	mergeInt(&result.RedisDB, defaults.RedisDB)
	mergeInt(&result.MaxRetries, defaults.MaxRetries)
	mergeInt(&result.ExcerptChars, defaults.ExcerptChars)
	mergeInt(&result.PriorExcerpt, defaults.PriorExcerpt)
	mergeInt(&result.MarketCacheLen, defaults.MarketCacheLen)
	mergeInt(&result.MinWords, defaults.MinWords)
	mergeInt(&result.MaxWords, defaults.MaxWords)
	mergeInt(&result.LowQualityScore, defaults.LowQualityScore)
	mergeInt(&result.MaxRecommendations, defaults.MaxRecommendations)
	mergeInt(&result.Port, defaults.Port)

	mergeFloat(&result.Temperature, defaults.Temperature)
	mergeFloat(&result.TraceRatio, defaults.TraceRatio)

	return result
}

// ToPipelineConfig builds the orchestrator configuration. Zero values keep
// the pipeline defaults.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	if c.MinWords > 0 {
		cfg.QualityRules.MinWords = c.MinWords
	}
	if c.MaxWords > 0 {
		cfg.QualityRules.MaxWords = c.MaxWords
	}
	if c.LowQualityScore > 0 {
		cfg.Thresholds.LowQualityScore = c.LowQualityScore
	}
	if c.MaxRecommendations > 0 {
		cfg.Thresholds.MaxRecommendations = c.MaxRecommendations
	}
	return cfg
}

// ToLLMConfig builds the model configuration. Empty model names keep the
// defaults.
func (c *Config) ToLLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	for tier, model := range map[llm.ModelTier]string{
		llm.TierLite:     c.ModelLite,
		llm.TierStandard: c.ModelStandard,
		llm.TierAdvanced: c.ModelAdvanced,
	} {
		if model != "" {
			cfg = cfg.WithModel(tier, model)
		}
	}
	if c.Temperature > 0 {
		cfg.Temperature = float32(c.Temperature)
	}
	if system, err := prompts.Get(prompts.DocumentsFile, "system"); err == nil {
		cfg.SystemInstruction = system
	}
	return cfg
}
