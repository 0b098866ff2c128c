package app

import (
	"context"
	"fmt"

	"github.com/aescanero/dago-node-analyzer/internal/analysis"
	"github.com/aescanero/dago-node-analyzer/internal/config"
	"github.com/aescanero/dago-node-analyzer/internal/enhance"
	"github.com/aescanero/dago-node-analyzer/internal/escalation"
	"github.com/aescanero/dago-node-analyzer/internal/llm"
	"github.com/aescanero/dago-node-analyzer/internal/routing"
	"github.com/aescanero/dago-node-analyzer/internal/search"
	"github.com/aescanero/dago-node-analyzer/internal/workflow"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Components is the wired analysis stack.
type Components struct {
	LLM      llm.Client
	Searcher search.Searcher
	Elastic  *search.Elastic
	Executor *workflow.Executor
}

// Build wires every collaborator from cfg. redisClient may be nil, in which
// case search results are not cached.
func Build(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	llmClient, err := llm.New(cfg.LLMConfig(), logger)
	if err != nil {
		logger.Warn("failed to initialize llm client (analysis will be rule-based only)", zap.Error(err))
		llmClient = llm.Unconfigured{}
	}

	c := &Components{LLM: llmClient, Searcher: search.Noop{}}

	if cfg.SearchBackend == config.SearchElasticsearch {
		es, err := search.NewElastic(cfg.ElasticConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize elasticsearch: %w", err)
		}
		c.Elastic = es
		c.Searcher = es
		if redisClient != nil && cfg.SearchCacheTTL > 0 {
			c.Searcher = search.NewCached(es, redisClient, cfg.SearchCacheTTL, logger)
		}
	}

	planner, err := routing.NewPlanner(routing.PlannerMode(cfg.PlannerMode), llmClient, cfg.PlannerTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize planner: %w", err)
	}

	escalationOpts, err := cfg.EscalationOptions()
	if err != nil {
		return nil, err
	}
	policy, err := escalation.NewPolicy(escalationOpts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize escalation policy: %w", err)
	}

	gateway, err := enhance.NewGateway(llmClient, cfg.LLMTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize enhancement gateway: %w", err)
	}

	var units []workflow.Analyzer
	for _, profile := range analysis.DefaultProfiles() {
		unit, err := analysis.NewUnit(profile, c.Searcher, policy, gateway, analysis.Options{
			TopK:          cfg.SearchTopK,
			SearchTimeout: cfg.SearchTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s unit: %w", profile.Domain, err)
		}
		units = append(units, unit)
	}

	c.Executor, err = workflow.NewExecutor(planner, routing.NewParser(logger), units, cfg.WorkflowOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize workflow: %w", err)
	}

	return c, nil
}

// LLMCheck reports whether enhancement is possible.
func (c *Components) LLMCheck(context.Context) error {
	if !c.LLM.Available() {
		return llm.ErrUnavailable
	}
	return nil
}
