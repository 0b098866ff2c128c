package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/eval/template"
	"github.com/aescanero/dago-node-analyzer/internal/jsonspan"
	"github.com/aescanero/dago-node-analyzer/internal/llm"
	"github.com/aescanero/dago-node-analyzer/internal/metrics"
	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Gateway turns a rule-based result into an LLM-enhanced payload.
type Gateway struct {
	client  llm.Client
	engine  *template.Engine
	timeout time.Duration
	logger  *zap.Logger
}

// NewGateway builds the prompt templates for every known domain. A missing or
// broken template fails construction.
func NewGateway(client llm.Client, timeout time.Duration, logger *zap.Logger) (*Gateway, error) {
	if client == nil {
		client = llm.Unconfigured{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := template.NewEngine(templateSources())
	if err != nil {
		return nil, fmt.Errorf("failed to build enhancement prompts: %w", err)
	}
	for _, d := range model.KnownDomains() {
		if !engine.Has(string(d)) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, d)
		}
	}

	return &Gateway{
		client:  client,
		engine:  engine,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Available reports whether the LLM collaborator is configured.
func (g *Gateway) Available() bool {
	return g != nil && g.client.Available()
}

// Enhance asks the LLM to refine ruleResult for domain. Errors are typed; see
// ErrUnknownDomain, ErrUnavailable, CallFailedError and UnparseableResponseError.
func (g *Gateway) Enhance(
	ctx context.Context,
	domain model.Domain,
	query model.Query,
	ruleResult model.UnitResult,
	documents []model.DocumentRef,
) (payload *model.EnhancedPayload, err error) {
	defer func() {
		metrics.EnhancementCalls.WithLabelValues(string(domain), Outcome(err)).Inc()
	}()

	if !domain.IsKnown() || !g.engine.Has(string(domain)) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}
	if !g.Available() {
		return nil, ErrUnavailable
	}

	prompt, err := g.engine.Render(string(domain), promptData(query, ruleResult, documents))
	if err != nil {
		return nil, fmt.Errorf("failed to render %s prompt: %w", domain, err)
	}
	system, err := g.engine.Render(systemTemplate, map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("failed to render system prompt: %w", err)
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := g.client.Complete(callCtx, system, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			return nil, ErrUnavailable
		}
		metrics.CollaboratorErrors.WithLabelValues("llm").Inc()
		return nil, &CallFailedError{Cause: err}
	}

	g.logger.Debug("enhancement response received",
		zap.String("domain", string(domain)),
		zap.String("request_id", query.ID()),
		zap.Duration("duration", time.Since(start)),
	)

	return parsePayload(domain, raw)
}

// parsePayload decodes the first JSON object in raw and pulls out the
// domain's recommendation list.
func parsePayload(domain model.Domain, raw string) (*model.EnhancedPayload, error) {
	span, ok := jsonspan.First(raw)
	if !ok || !gjson.Valid(span) {
		return nil, &UnparseableResponseError{Raw: raw}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(span), &data); err != nil {
		return nil, &UnparseableResponseError{Raw: raw}
	}

	recs := stringList(gjson.Get(span, recommendationKeys[domain]))
	if len(recs) == 0 && recommendationKeys[domain] != "recommendations" {
		recs = stringList(gjson.Get(span, "recommendations"))
	}

	return &model.EnhancedPayload{Data: data, Recommendations: recs}, nil
}

// stringList flattens an array of strings or of objects carrying a text field.
func stringList(value gjson.Result) []string {
	if !value.IsArray() {
		return nil
	}

	var out []string
	value.ForEach(func(_, item gjson.Result) bool {
		var text string
		switch {
		case item.Type == gjson.String:
			text = item.String()
		case item.IsObject():
			for _, key := range []string{"item", "recommendation", "requirement", "text", "description"} {
				if v := item.Get(key); v.Type == gjson.String {
					text = v.String()
					break
				}
			}
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
		return true
	})
	return out
}

// promptData flattens the inputs into plain maps for the templates.
func promptData(query model.Query, rule model.UnitResult, documents []model.DocumentRef) map[string]interface{} {
	fields := make([]map[string]interface{}, 0)
	for _, f := range query.Fields() {
		label := f.Label
		if label == "" {
			label = f.ID
		}
		fields = append(fields, map[string]interface{}{"label": label, "value": f.Value})
	}

	detections := make([]map[string]interface{}, 0, len(rule.Detections))
	for _, d := range rule.Detections {
		detections = append(detections, map[string]interface{}{"keyword": d.Keyword, "category": d.Category})
	}

	suggestions := make([]map[string]interface{}, 0, len(rule.Suggestions))
	for _, s := range rule.Suggestions {
		suggestions = append(suggestions, map[string]interface{}{"field_id": s.FieldID, "value": s.Value})
	}

	docs := make([]map[string]interface{}, 0, len(documents))
	for _, d := range documents {
		docs = append(docs, map[string]interface{}{"title": d.Title, "snippet": d.Snippet})
	}

	return map[string]interface{}{
		"query":       query.Text(),
		"fields":      fields,
		"detections":  detections,
		"suggestions": suggestions,
		"documents":   docs,
	}
}
