package config

import (
	"fmt"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/escalation"
	"github.com/aescanero/dago-node-analyzer/internal/llm"
	"github.com/aescanero/dago-node-analyzer/internal/routing"
	"github.com/aescanero/dago-node-analyzer/internal/search"
	"github.com/aescanero/dago-node-analyzer/internal/workflow"
	"github.com/caarlos0/env/v10"
	"github.com/redis/go-redis/v9"
)

// Search backends
const (
	SearchNone          = "none"
	SearchElasticsearch = "elasticsearch"
)

// Config holds all configuration for the analysis worker
type Config struct {
	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"analyzer-1"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamKey     string        `env:"STREAM_KEY" envDefault:"analysis.requests"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"analysis-workers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"analysis.results"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`
	MaxRetries    int           `env:"MAX_RETRIES" envDefault:"3"`

	// LLM configuration
	LLMProvider  string        `env:"LLM_PROVIDER" envDefault:"anthropic"`
	LLMAPIKey    string        `env:"LLM_API_KEY"`
	LLMModel     string        `env:"LLM_MODEL" envDefault:"claude-sonnet-4-20250514"`
	LLMMaxTokens int           `env:"LLM_MAX_TOKENS" envDefault:"2048"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	// Routing configuration
	PlannerMode    string        `env:"PLANNER_MODE" envDefault:"auto"`
	PlannerTimeout time.Duration `env:"PLANNER_TIMEOUT" envDefault:"15s"`

	// Search configuration
	SearchBackend    string        `env:"SEARCH_BACKEND" envDefault:"none"`
	ElasticAddresses []string      `env:"ELASTICSEARCH_ADDRESSES" envSeparator:"," envDefault:"http://localhost:9200"`
	ElasticUsername  string        `env:"ELASTICSEARCH_USERNAME"`
	ElasticPassword  string        `env:"ELASTICSEARCH_PASSWORD"`
	SearchIndex      string        `env:"SEARCH_INDEX" envDefault:"water-guidance"`
	SearchTopK       int           `env:"SEARCH_TOP_K" envDefault:"5"`
	SearchTimeout    time.Duration `env:"SEARCH_TIMEOUT" envDefault:"5s"`
	SearchCacheTTL   time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"10m"`

	// Escalation configuration
	EscalationMaxWords    int    `env:"ESCALATION_MAX_WORDS" envDefault:"15"`
	EscalationMaxConcepts int    `env:"ESCALATION_MAX_CONCEPTS" envDefault:"2"`
	EscalationExtraRules  string `env:"ESCALATION_EXTRA_RULES"`

	// Unit configuration
	UnitTimeout time.Duration `env:"UNIT_TIMEOUT" envDefault:"60s"`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("STREAM_KEY is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.ResultStream == "" {
		return fmt.Errorf("RESULT_STREAM is required")
	}

	if c.ResultStream == c.StreamKey {
		return fmt.Errorf("RESULT_STREAM must differ from STREAM_KEY")
	}

	if c.LLMProvider == "" {
		return fmt.Errorf("LLM_PROVIDER is required")
	}

	// LLM_API_KEY is optional; without it every request is rule-based

	if c.LLMModel == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}

	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}

	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}

	switch routing.PlannerMode(c.PlannerMode) {
	case routing.PlannerAuto, routing.PlannerLLM, routing.PlannerKeyword:
	default:
		return fmt.Errorf("PLANNER_MODE must be one of: auto, llm, keyword")
	}

	if c.PlannerTimeout <= 0 {
		return fmt.Errorf("PLANNER_TIMEOUT must be positive")
	}

	switch c.SearchBackend {
	case SearchNone:
	case SearchElasticsearch:
		if len(c.ElasticAddresses) == 0 {
			return fmt.Errorf("ELASTICSEARCH_ADDRESSES is required when SEARCH_BACKEND=elasticsearch")
		}
		if c.SearchIndex == "" {
			return fmt.Errorf("SEARCH_INDEX is required when SEARCH_BACKEND=elasticsearch")
		}
	default:
		return fmt.Errorf("SEARCH_BACKEND must be one of: none, elasticsearch")
	}

	if c.SearchTopK <= 0 {
		return fmt.Errorf("SEARCH_TOP_K must be positive")
	}

	if c.SearchTimeout <= 0 {
		return fmt.Errorf("SEARCH_TIMEOUT must be positive")
	}

	if c.SearchCacheTTL < 0 {
		return fmt.Errorf("SEARCH_CACHE_TTL must be non-negative")
	}

	if c.EscalationMaxWords <= 0 {
		return fmt.Errorf("ESCALATION_MAX_WORDS must be positive")
	}

	if c.EscalationMaxConcepts <= 0 {
		return fmt.Errorf("ESCALATION_MAX_CONCEPTS must be positive")
	}

	if _, err := escalation.ParseRules(c.EscalationExtraRules); err != nil {
		return fmt.Errorf("ESCALATION_EXTRA_RULES: %w", err)
	}

	if c.UnitTimeout <= 0 {
		return fmt.Errorf("UNIT_TIMEOUT must be positive")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must be non-negative")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// RedisOptions returns Redis client options
func (c *Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// LLMConfig returns LLM client options
func (c *Config) LLMConfig() llm.Config {
	return llm.Config{
		Provider:  c.LLMProvider,
		APIKey:    c.LLMAPIKey,
		Model:     c.LLMModel,
		MaxTokens: c.LLMMaxTokens,
		Timeout:   c.LLMTimeout,
	}
}

// ElasticConfig returns Elasticsearch client options
func (c *Config) ElasticConfig() search.ElasticConfig {
	return search.ElasticConfig{
		Addresses: c.ElasticAddresses,
		Username:  c.ElasticUsername,
		Password:  c.ElasticPassword,
		Index:     c.SearchIndex,
	}
}

// EscalationOptions returns the escalation policy options
func (c *Config) EscalationOptions() (escalation.Options, error) {
	rules, err := escalation.ParseRules(c.EscalationExtraRules)
	if err != nil {
		return escalation.Options{}, err
	}
	return escalation.Options{
		MaxWords:    c.EscalationMaxWords,
		MaxConcepts: c.EscalationMaxConcepts,
		ExtraRules:  rules,
	}, nil
}

// WorkflowOptions returns the executor timeouts
func (c *Config) WorkflowOptions() workflow.Options {
	return workflow.Options{
		PlannerTimeout: c.PlannerTimeout,
		UnitTimeout:    c.UnitTimeout,
	}
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{WorkerID=%s, RedisAddr=%s, RedisDB=%d, StreamKey=%s, ConsumerGroup=%s, ResultStream=%s, "+
			"LLMProvider=%s, LLMModel=%s, LLMConfigured=%v, PlannerMode=%s, SearchBackend=%s, SearchIndex=%s, "+
			"HealthPort=%d, LogLevel=%s}",
		c.WorkerID,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		c.ResultStream,
		c.LLMProvider,
		c.LLMModel,
		c.LLMAPIKey != "",
		c.PlannerMode,
		c.SearchBackend,
		c.SearchIndex,
		c.HealthPort,
		c.LogLevel,
	)
}
