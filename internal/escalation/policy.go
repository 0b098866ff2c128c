package escalation

import (
	"context"
	"fmt"
	"strings"

	"github.com/aescanero/dago-node-analyzer/internal/detect"
	"github.com/aescanero/dago-node-analyzer/internal/eval/cel"
	"go.uber.org/zap"
)

// DefaultHedgingMarkers signal an ambiguous or uncertain request.
var DefaultHedgingMarkers = []string{
	"approximately", "around", "similar to", "like", "near",
	"complex", "multiple", "various", "depends on", "varies",
	"not sure", "unclear", "might need", "could be",
}

// DefaultConceptKeywords are the cross-domain concepts counted by the
// complexity rule.
var DefaultConceptKeywords = []string{
	"source", "usage", "permit", "license", "exemption", "compliance",
}

const (
	// DefaultMaxWords is the word count above which a request escalates
	DefaultMaxWords = 15

	// DefaultMaxConcepts is the concept count above which a request escalates
	DefaultMaxConcepts = 2
)

// Rule is a named CEL condition over the "signals" variable. Available keys:
// detections, categories, hedges (list), tokens, concepts (list), concept_count.
type Rule struct {
	Name      string
	Condition string
}

// DetectionSummary is what the deterministic pass found.
type DetectionSummary struct {
	Matches    int
	Categories []string
}

// Decision is the outcome of evaluating the policy.
type Decision struct {
	Escalate bool
	Reasons  []string
}

// Options tunes the built-in rules.
type Options struct {
	MaxWords    int
	MaxConcepts int
	Hedges      []string
	Concepts    []string
	ExtraRules  []Rule
}

// Policy decides whether a request needs the enhancement pass.
type Policy struct {
	evaluator *cel.Evaluator
	rules     []Rule
	hedges    []string
	concepts  []string
	logger    *zap.Logger
}

// NewPolicy compiles the built-in rules plus any extra rules. An invalid rule
// fails construction.
func NewPolicy(opts Options, logger *zap.Logger) (*Policy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultMaxWords
	}
	if opts.MaxConcepts <= 0 {
		opts.MaxConcepts = DefaultMaxConcepts
	}
	if len(opts.Hedges) == 0 {
		opts.Hedges = DefaultHedgingMarkers
	}
	if len(opts.Concepts) == 0 {
		opts.Concepts = DefaultConceptKeywords
	}

	evaluator, err := cel.NewEvaluator("signals")
	if err != nil {
		return nil, err
	}

	rules := []Rule{
		{Name: "no_detections", Condition: "signals.detections == 0"},
		{Name: "hedging", Condition: "size(signals.hedges) > 0"},
		{Name: "long_query", Condition: fmt.Sprintf("signals.tokens > %d", opts.MaxWords)},
		{Name: "cross_cutting", Condition: fmt.Sprintf("signals.concept_count > %d", opts.MaxConcepts)},
	}
	rules = append(rules, opts.ExtraRules...)

	for _, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("escalation rule %q: name is required", r.Condition)
		}
		if err := evaluator.Compile(r.Condition); err != nil {
			return nil, fmt.Errorf("escalation rule %q: %w", r.Name, err)
		}
	}

	return &Policy{
		evaluator: evaluator,
		rules:     rules,
		hedges:    append([]string(nil), opts.Hedges...),
		concepts:  append([]string(nil), opts.Concepts...),
		logger:    logger,
	}, nil
}

// NeedsEnhancement reports whether any rule fires.
func (p *Policy) NeedsEnhancement(summary DetectionSummary, query string) bool {
	return p.Decide(summary, query).Escalate
}

// Decide evaluates every rule and reports which ones fired. A rule that fails
// to evaluate counts as fired, so an uncertain signal escalates.
func (p *Policy) Decide(summary DetectionSummary, query string) Decision {
	vars := map[string]interface{}{"signals": p.signals(summary, query)}

	decision := Decision{}
	for _, r := range p.rules {
		fired, err := p.evaluator.EvaluateBool(context.Background(), r.Condition, vars)
		if err != nil {
			p.logger.Warn("escalation rule evaluation failed",
				zap.String("rule", r.Name),
				zap.Error(err),
			)
			fired = true
		}
		if fired {
			decision.Escalate = true
			decision.Reasons = append(decision.Reasons, r.Name)
		}
	}
	return decision
}

// signals computes the facts the rules are evaluated against.
func (p *Policy) signals(summary DetectionSummary, query string) map[string]interface{} {
	hedges := detect.MatchedTerms(query, p.hedges)
	concepts := detect.MatchedTerms(query, p.concepts)
	categories := summary.Categories
	if categories == nil {
		categories = []string{}
	}
	if hedges == nil {
		hedges = []string{}
	}
	if concepts == nil {
		concepts = []string{}
	}

	return map[string]interface{}{
		"detections":    int64(summary.Matches),
		"categories":    categories,
		"hedges":        hedges,
		"tokens":        int64(len(strings.Fields(query))),
		"concepts":      concepts,
		"concept_count": int64(len(concepts)),
	}
}

// ParseRules parses "name=condition;name=condition" into rules.
func ParseRules(raw string) ([]Rule, error) {
	var rules []Rule
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, cond, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(cond) == "" {
			return nil, fmt.Errorf("invalid escalation rule %q, want name=condition", part)
		}
		rules = append(rules, Rule{Name: strings.TrimSpace(name), Condition: strings.TrimSpace(cond)})
	}
	return rules, nil
}
