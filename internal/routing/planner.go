package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/eval/template"
	"github.com/aescanero/dago-node-analyzer/internal/llm"
	"github.com/aescanero/dago-node-analyzer/internal/model"
	"go.uber.org/zap"
)

// PlannerMode selects how the routing collaborator is implemented.
type PlannerMode string

const (
	// PlannerAuto uses the LLM when one is configured, otherwise keyword routing
	PlannerAuto PlannerMode = "auto"

	// PlannerLLM always asks the LLM
	PlannerLLM PlannerMode = "llm"

	// PlannerKeyword routes on trigger words in the request itself
	PlannerKeyword PlannerMode = "keyword"
)

// ErrPlannerUnavailable is returned by the LLM planner when no LLM is configured.
var ErrPlannerUnavailable = errors.New("routing planner unavailable")

// Planner is the routing collaborator. Its output is untrusted text.
type Planner interface {
	Plan(ctx context.Context, query model.Query) (string, error)
}

var domainDescriptions = map[model.Domain]string{
	model.DomainSource:      "where the water comes from (river, lake, well, groundwater)",
	model.DomainUsage:       "what the water is for (irrigation, domestic, industrial) and how much",
	model.DomainPermissions: "regulatory requirements, consultation, and fee exemptions",
}

const plannerTemplate = `You are routing a BC water licence request to specialist analysts.

Available analysts:
{{#each domains}}- {{{name}}}: {{{description}}}
{{/each}}
Request: {{{query}}}
{{#if fields}}Form fields present: {{{fields}}}
{{/if}}
Respond with JSON only, in this shape:
{"analysis": "<one sentence>", "route": ["source", "usage", "permissions"], "clarifications": []}
List only the analysts the request needs.`

// LLMPlanner asks the LLM which domains a request needs.
type LLMPlanner struct {
	client  llm.Client
	engine  *template.Engine
	timeout time.Duration
	logger  *zap.Logger
}

// NewLLMPlanner builds the planner prompt. A nil client is treated as unconfigured.
func NewLLMPlanner(client llm.Client, timeout time.Duration, logger *zap.Logger) (*LLMPlanner, error) {
	if client == nil {
		client = llm.Unconfigured{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := template.NewEngine(map[string]string{"planner": plannerTemplate})
	if err != nil {
		return nil, fmt.Errorf("failed to build planner prompt: %w", err)
	}

	return &LLMPlanner{client: client, engine: engine, timeout: timeout, logger: logger}, nil
}

// Plan renders the planner prompt and returns the raw LLM reply.
func (p *LLMPlanner) Plan(ctx context.Context, query model.Query) (string, error) {
	if !p.client.Available() {
		return "", ErrPlannerUnavailable
	}

	prompt, err := p.engine.Render("planner", plannerData(query))
	if err != nil {
		return "", fmt.Errorf("failed to render planner prompt: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.client.Complete(ctx, "", prompt)
	if err != nil {
		return "", fmt.Errorf("planner call failed: %w", err)
	}

	p.logger.Debug("planner response received",
		zap.String("request_id", query.ID()),
		zap.String("raw", raw),
	)
	return raw, nil
}

func plannerData(query model.Query) map[string]interface{} {
	domains := make([]map[string]interface{}, 0, len(domainDescriptions))
	for _, d := range model.KnownDomains() {
		domains = append(domains, map[string]interface{}{
			"name":        string(d),
			"description": domainDescriptions[d],
		})
	}

	var labels []string
	for _, f := range query.Fields() {
		if f.Label != "" {
			labels = append(labels, f.Label)
		}
	}

	return map[string]interface{}{
		"domains": domains,
		"query":   query.Text(),
		"fields":  strings.Join(labels, "; "),
	}
}

// QueryPlanner echoes the request text, so the parser's trigger scan routes
// on the words the requester used.
type QueryPlanner struct{}

// braces are swapped for parentheses so request text can never be read as a
// planner route object.
var braces = strings.NewReplacer("{", "(", "}", ")")

// Plan returns the request text plus its form labels, with every brace
// neutralised.
func (QueryPlanner) Plan(_ context.Context, query model.Query) (string, error) {
	parts := []string{query.Text()}
	for _, f := range query.Fields() {
		if f.Label != "" {
			parts = append(parts, f.Label)
		}
	}
	return braces.Replace(strings.Join(parts, "\n")), nil
}

// NewPlanner picks the planner for mode.
func NewPlanner(mode PlannerMode, client llm.Client, timeout time.Duration, logger *zap.Logger) (Planner, error) {
	switch mode {
	case PlannerKeyword:
		return QueryPlanner{}, nil
	case PlannerLLM:
		return NewLLMPlanner(client, timeout, logger)
	case PlannerAuto, "":
		if client != nil && client.Available() {
			return NewLLMPlanner(client, timeout, logger)
		}
		return QueryPlanner{}, nil
	default:
		return nil, fmt.Errorf("unknown planner mode: %q", mode)
	}
}
