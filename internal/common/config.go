package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Logging     LoggingConfig  `toml:"logging"`
	Storage     StorageConfig  `toml:"storage"`
	LLM         LLMConfig      `toml:"llm"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Claude      ClaudeConfig   `toml:"claude"`
	Pipeline    PipelineConfig `toml:"pipeline"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // debug, info, warn, error
	Output []string `toml:"output"` // "console", "file"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// LLMConfig represents provider-agnostic LLM settings
type LLMConfig struct {
	DefaultProvider   string  `toml:"default_provider"`    // "gemini" or "claude"
	RequestsPerMinute int     `toml:"requests_per_minute"` // upstream rate limit, enforced client-side
	Phase1Temperature float32 `toml:"phase1_temperature"`  // creative candidate generation
	Phase2Temperature float32 `toml:"phase2_temperature"`  // precise position matching
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// PipelineConfig holds the chunking and orchestration tunables
type PipelineConfig struct {
	MaxChunkChars       int     `toml:"max_chunk_chars"`
	MinChunkChars       int     `toml:"min_chunk_chars"`
	Concurrency         int     `toml:"concurrency"`          // max in-flight Phase 2 calls
	ChunkTimeout        string  `toml:"chunk_timeout"`        // per-chunk call timeout, e.g. "120s"
	SimilarityThreshold float64 `toml:"similarity_threshold"` // minimum repair match score
}

// NewDefaultConfig returns a Config populated with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"console"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/adnota",
				ResetOnStartup: false,
			},
		},
		LLM: LLMConfig{
			DefaultProvider:   "gemini",
			RequestsPerMinute: 30,
			Phase1Temperature: 0.9,
			Phase2Temperature: 0.1,
		},
		Gemini: GeminiConfig{
			Model:     "gemini-2.5-flash",
			Timeout:   "120s",
			MaxTokens: 8192,
		},
		Claude: ClaudeConfig{
			Model:     "claude-sonnet-4-20250514",
			Timeout:   "120s",
			MaxTokens: 8192,
		},
		Pipeline: PipelineConfig{
			MaxChunkChars:       40000,
			MinChunkChars:       10000,
			Concurrency:         3,
			ChunkTimeout:        "120s",
			SimilarityThreshold: 0.6,
		},
	}
}

// LoadFromFile loads configuration from a TOML file with env overrides applied
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromEnv builds a config from defaults and environment variables only
func LoadFromEnv() *Config {
	config := NewDefaultConfig()
	applyEnvOverrides(config)
	return config
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures deep inside the pipeline.
func (c *Config) Validate() error {
	if c.Pipeline.MaxChunkChars <= 0 {
		return fmt.Errorf("pipeline.max_chunk_chars must be positive, got %d", c.Pipeline.MaxChunkChars)
	}
	if c.Pipeline.MinChunkChars < 0 || c.Pipeline.MinChunkChars > c.Pipeline.MaxChunkChars {
		return fmt.Errorf("pipeline.min_chunk_chars must be in [0, max_chunk_chars], got %d", c.Pipeline.MinChunkChars)
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be positive, got %d", c.Pipeline.Concurrency)
	}
	if c.Pipeline.SimilarityThreshold <= 0 || c.Pipeline.SimilarityThreshold > 1 {
		return fmt.Errorf("pipeline.similarity_threshold must be in (0, 1], got %f", c.Pipeline.SimilarityThreshold)
	}
	if _, err := time.ParseDuration(c.Pipeline.ChunkTimeout); err != nil {
		return fmt.Errorf("invalid pipeline.chunk_timeout %q: %w", c.Pipeline.ChunkTimeout, err)
	}
	return nil
}

// ChunkTimeoutDuration returns the parsed per-chunk timeout
func (c *PipelineConfig) ChunkTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ChunkTimeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ADNOTA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("ADNOTA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ADNOTA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("ADNOTA_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("ADNOTA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// LLM configuration
	if provider := os.Getenv("ADNOTA_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}
	if rpm := os.Getenv("ADNOTA_LLM_REQUESTS_PER_MINUTE"); rpm != "" {
		if n, err := strconv.Atoi(rpm); err == nil {
			config.LLM.RequestsPerMinute = n
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}

	// Pipeline configuration
	if maxChars := os.Getenv("ADNOTA_PIPELINE_MAX_CHUNK_CHARS"); maxChars != "" {
		if n, err := strconv.Atoi(maxChars); err == nil {
			config.Pipeline.MaxChunkChars = n
		}
	}
	if minChars := os.Getenv("ADNOTA_PIPELINE_MIN_CHUNK_CHARS"); minChars != "" {
		if n, err := strconv.Atoi(minChars); err == nil {
			config.Pipeline.MinChunkChars = n
		}
	}
	if concurrency := os.Getenv("ADNOTA_PIPELINE_CONCURRENCY"); concurrency != "" {
		if n, err := strconv.Atoi(concurrency); err == nil {
			config.Pipeline.Concurrency = n
		}
	}
}
