package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "analysis.requests", cfg.StreamKey)
	assert.Equal(t, "analysis-workers", cfg.ConsumerGroup)
	assert.Equal(t, "analysis.results", cfg.ResultStream)
	assert.Equal(t, "auto", cfg.PlannerMode)
	assert.Equal(t, SearchNone, cfg.SearchBackend)
	assert.Equal(t, 5, cfg.SearchTopK)
	assert.Equal(t, 15, cfg.EscalationMaxWords)
	assert.Equal(t, 2, cfg.EscalationMaxConcepts)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.ElasticAddresses)
	assert.Equal(t, 10*time.Minute, cfg.SearchCacheTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SEARCH_BACKEND", "elasticsearch")
	t.Setenv("ELASTICSEARCH_ADDRESSES", "http://es-1:9200,http://es-2:9200")
	t.Setenv("SEARCH_INDEX", "licensing")
	t.Setenv("PLANNER_MODE", "keyword")
	t.Setenv("ESCALATION_EXTRA_RULES", "groundwater='groundwater' in signals.categories")
	t.Setenv("LLM_API_KEY", "sk-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://es-1:9200", "http://es-2:9200"}, cfg.ElasticConfig().Addresses)
	assert.Equal(t, "licensing", cfg.ElasticConfig().Index)

	opts, err := cfg.EscalationOptions()
	require.NoError(t, err)
	require.Len(t, opts.ExtraRules, 1)
	assert.Equal(t, "groundwater", opts.ExtraRules[0].Name)

	assert.Equal(t, "sk-secret", cfg.LLMConfig().APIKey)
	assert.NotContains(t, cfg.String(), "sk-secret")
	assert.Contains(t, cfg.String(), "LLMConfigured=true")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing worker id", func(c *Config) { c.WorkerID = "" }, "WORKER_ID is required"},
		{"result stream equals input", func(c *Config) { c.ResultStream = c.StreamKey }, "RESULT_STREAM must differ"},
		{"bad planner mode", func(c *Config) { c.PlannerMode = "random" }, "PLANNER_MODE"},
		{"bad search backend", func(c *Config) { c.SearchBackend = "solr" }, "SEARCH_BACKEND"},
		{"elastic without index", func(c *Config) {
			c.SearchBackend = SearchElasticsearch
			c.SearchIndex = ""
		}, "SEARCH_INDEX is required"},
		{"negative cache ttl", func(c *Config) { c.SearchCacheTTL = -time.Second }, "SEARCH_CACHE_TTL"},
		{"bad extra rule", func(c *Config) { c.EscalationExtraRules = "nonsense" }, "ESCALATION_EXTRA_RULES"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "LOG_LEVEL"},
		{"bad health port", func(c *Config) { c.HealthPort = 70000 }, "HEALTH_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
