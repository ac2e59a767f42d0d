// Package config loads the gateway's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DriverValkey   = "valkey"
	DriverRedis    = "redis"
	DriverPgvector = "pgvector"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Index    IndexConfig    `yaml:"index"`
	Oracles  OraclesConfig  `yaml:"oracles"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"` // must cover two chat completions
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the document store. Counters and the embedding
// cache always live at Addrs, even when documents go to pgvector.
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"`
	Addrs            []string      `yaml:"addrs"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	DSN              string        `yaml:"dsn"`
	ReadinessTimeout time.Duration `yaml:"readiness_timeout"`
}

type IndexConfig struct {
	Collection      string `yaml:"collection"`
	Dimensions      int    `yaml:"dimensions"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

type OraclesConfig struct {
	Provider       string        `yaml:"provider"`
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"` // Ollama server URL for the ollama provider
	EmbeddingModel string        `yaml:"embedding_model"`
	ChatModel      string        `yaml:"chat_model"`
	Timeout        time.Duration `yaml:"timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"` // 0 disables throttling
	Burst          int           `yaml:"burst"`
	EmbeddingCache bool          `yaml:"embedding_cache"`
}

type PipelineConfig struct {
	RelevanceThreshold    float64       `yaml:"relevance_threshold"`
	TopK                  int           `yaml:"top_k"`
	MaxTopK               int           `yaml:"max_top_k"`
	MaxQueryLength        int           `yaml:"max_query_length"`
	ClassifierMaxTokens   int           `yaml:"classifier_max_tokens"`
	GenerationTemperature float32       `yaml:"generation_temperature"`
	GenerationMaxTokens   int           `yaml:"generation_max_tokens"`
	FreshnessMaxAge       time.Duration `yaml:"freshness_max_age"`
}

type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"` // empty list disables auth
}

type LoggingConfig struct {
	Level string `yaml:"level"` // empty picks by environment
}

// Defaults is the configuration a file starts from; keys it omits keep these values.
func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:            8000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{Driver: DriverValkey, ReadinessTimeout: 10 * time.Second},
		Index: IndexConfig{
			Collection:      "commercial_data",
			Dimensions:      3072,
			HNSWM:           32,
			HNSWEFConstruct: 400,
		},
		Oracles: OraclesConfig{
			Provider:       ProviderOpenAI,
			EmbeddingModel: "text-embedding-3-large",
			ChatModel:      "gpt-4-turbo",
			Timeout:        30 * time.Second,
			Burst:          1,
		},
		Pipeline: PipelineConfig{
			RelevanceThreshold:    0.30,
			TopK:                  10,
			MaxTopK:               50,
			MaxQueryLength:        1000,
			ClassifierMaxTokens:   10,
			GenerationTemperature: 0.3,
			GenerationMaxTokens:   1500,
			FreshnessMaxAge:       24 * time.Hour,
		},
	}
}

// Validate returns every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.HTTP.Port > 0 && c.HTTP.Port <= 65535, "http.port must be in 1..65535, got %d", c.HTTP.Port)
	check(c.HTTP.ReadTimeout > 0 && c.HTTP.WriteTimeout > 0, "http timeouts must be positive")

	switch c.Database.Driver {
	case DriverValkey, DriverRedis:
	case DriverPgvector:
		check(c.Database.DSN != "", "database.dsn is required for the pgvector driver")
	default:
		errs = append(errs, fmt.Errorf("database.driver must be valkey, redis or pgvector, got %q", c.Database.Driver))
	}
	check(len(c.Database.Addrs) > 0, "database.addrs is required")

	check(c.Index.Dimensions > 0, "index.dimensions must be positive, got %d", c.Index.Dimensions)

	switch c.Oracles.Provider {
	case ProviderOpenAI:
		check(c.Oracles.APIKey != "", "oracles.api_key is required for the openai provider")
	case ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("oracles.provider must be openai or ollama, got %q", c.Oracles.Provider))
	}
	check(c.Oracles.RateLimitRPS >= 0, "oracles.rate_limit_rps must not be negative, got %g", c.Oracles.RateLimitRPS)
	check(c.Oracles.Timeout > 0, "oracles.timeout must be positive")

	p := c.Pipeline
	check(p.RelevanceThreshold > 0 && p.RelevanceThreshold <= 2,
		"pipeline.relevance_threshold must be in (0, 2], got %g", p.RelevanceThreshold)
	check(p.TopK > 0 && p.TopK <= p.MaxTopK,
		"pipeline.top_k (%d) must be positive and at most pipeline.max_top_k (%d)", p.TopK, p.MaxTopK)
	check(p.MaxQueryLength > 0, "pipeline.max_query_length must be positive")

	return errors.Join(errs...)
}
