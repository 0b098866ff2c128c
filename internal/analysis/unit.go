package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/detect"
	"github.com/aescanero/dago-node-analyzer/internal/escalation"
	"github.com/aescanero/dago-node-analyzer/internal/metrics"
	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/aescanero/dago-node-analyzer/internal/search"
	"go.uber.org/zap"
)

// Escalator decides whether the enhancement pass is needed.
type Escalator interface {
	Decide(summary escalation.DetectionSummary, query string) escalation.Decision
}

// Enhancer is the LLM enhancement pass.
type Enhancer interface {
	Available() bool
	Enhance(ctx context.Context, domain model.Domain, query model.Query, ruleResult model.UnitResult, documents []model.DocumentRef) (*model.EnhancedPayload, error)
}

// Options tunes collaborator calls.
type Options struct {
	TopK          int
	SearchTimeout time.Duration
}

// Unit runs the hybrid analysis for one domain.
type Unit struct {
	profile  Profile
	searcher search.Searcher
	policy   Escalator
	enhancer Enhancer
	opts     Options
	logger   *zap.Logger
}

// NewUnit validates the profile and wires the collaborators. A nil searcher
// searches nothing; a nil enhancer never enhances.
func NewUnit(profile Profile, searcher search.Searcher, policy Escalator, enhancer Enhancer, opts Options, logger *zap.Logger) (*Unit, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, fmt.Errorf("profile %s: escalation policy is required", profile.Domain)
	}
	if searcher == nil {
		searcher = search.Noop{}
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Unit{
		profile:  profile,
		searcher: searcher,
		policy:   policy,
		enhancer: enhancer,
		opts:     opts,
		logger:   logger.With(zap.String("domain", string(profile.Domain))),
	}, nil
}

// Domain returns the domain this unit analyses.
func (u *Unit) Domain() model.Domain { return u.profile.Domain }

// Analyze always returns a result. Collaborator failures degrade the result
// instead of aborting it; a search failure marks it as an error but the
// deterministic analysis still runs.
func (u *Unit) Analyze(ctx context.Context, query model.Query) (result model.UnitResult) {
	start := time.Now()
	domain := u.profile.Domain
	log := u.logger.With(zap.String("request_id", query.ID()))

	defer func() {
		if r := recover(); r != nil {
			log.Error("analysis panic recovered", zap.Any("panic", r))
			result = model.ErrorResult(domain, fmt.Sprintf("internal error: %v", r))
		}
		metrics.UnitDuration.WithLabelValues(string(domain)).Observe(time.Since(start).Seconds())
		metrics.UnitResults.WithLabelValues(string(domain), string(result.Status), string(result.ProcessingMethod)).Inc()
	}()

	if err := ctx.Err(); err != nil {
		return cancelled(domain, err)
	}

	result = model.UnitResult{
		Domain:           domain,
		Status:           model.StatusSuccess,
		Documents:        []model.DocumentRef{},
		ProcessingMethod: model.MethodRuleBased,
	}

	docs, err := u.search(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cancelled(domain, ctxErr)
		}
		log.Warn("document search failed", zap.Error(err))
		metrics.CollaboratorErrors.WithLabelValues("search").Inc()
		result.Status = model.StatusError
		result.Message = err.Error()
	} else {
		result.Documents = docs
	}

	result.Detections = detect.Detect(query.Text(), u.profile.Lexicon)
	result.FormMatches = u.scanForm(query)
	result.Estimates = u.estimates(result.Detections)

	var extraction Extraction
	if u.profile.Extractor != nil {
		extraction = u.profile.Extractor(query, result.Detections)
		result.Suggestions = extraction.Suggestions
	}

	decision := u.policy.Decide(escalation.DetectionSummary{
		Matches:    len(result.Detections),
		Categories: detect.Categories(result.Detections),
	}, query.Text())
	result.Escalated = decision.Escalate
	result.EscalationReasons = decision.Reasons

	var payload *model.EnhancedPayload
	switch {
	case !decision.Escalate:
		metrics.Escalations.WithLabelValues(string(domain), "rule_based").Inc()
	case u.enhancer == nil || !u.enhancer.Available():
		metrics.Escalations.WithLabelValues(string(domain), "unavailable").Inc()
		log.Debug("escalation requested but llm not configured", zap.Strings("reasons", decision.Reasons))
	default:
		metrics.Escalations.WithLabelValues(string(domain), "escalated").Inc()
		if err := ctx.Err(); err != nil {
			return cancelled(domain, err)
		}
		payload, err = u.enhancer.Enhance(ctx, domain, query, result, result.Documents)
		if err != nil {
			log.Warn("enhancement failed, keeping rule-based result", zap.Error(err))
			result.EnhancementError = err.Error()
			payload = nil
		}
	}

	if payload != nil {
		result.Enhancement = payload
		result.ProcessingMethod = model.MethodHybridLLM
	}
	result.Recommendations = u.recommend(result.Detections, payload, extraction)

	if result.Message == "" && len(result.Documents) == 0 {
		result.Message = u.profile.NoDocumentsMessage
	}

	log.Debug("analysis complete",
		zap.String("status", string(result.Status)),
		zap.String("method", string(result.ProcessingMethod)),
		zap.Int("detections", len(result.Detections)),
		zap.Bool("escalated", result.Escalated),
	)
	return result
}

func (u *Unit) search(ctx context.Context, query model.Query) ([]model.DocumentRef, error) {
	if u.opts.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.opts.SearchTimeout)
		defer cancel()
	}

	docs, err := u.searcher.Search(ctx, query.Text()+u.profile.SearchSuffix, u.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("document search failed: %w", err)
	}
	if docs == nil {
		docs = []model.DocumentRef{}
	}
	return docs, nil
}

// scanForm returns the fields whose label mentions one of the profile's terms.
func (u *Unit) scanForm(query model.Query) []model.FieldMatch {
	var out []model.FieldMatch
	for _, f := range query.Fields() {
		if f.Label == "" || !detect.ContainsAny(f.Label, u.profile.FormTerms) {
			continue
		}
		out = append(out, model.FieldMatch{ID: f.ID, Label: f.Label, Type: f.Type, Value: f.Value})
	}
	return out
}

func (u *Unit) estimates(detections []model.DetectionMatch) []model.QuantityEstimate {
	var out []model.QuantityEstimate
	for _, d := range detections {
		if est, ok := u.profile.Estimates[d.Keyword]; ok {
			out = append(out, model.QuantityEstimate{Usage: d.Keyword, Estimate: est})
		}
	}
	return out
}

// recommend prefers enhancement recommendations, then the rule defaults when
// something was detected, then the clarification prompt. Extractor
// recommendations are always appended.
func (u *Unit) recommend(detections []model.DetectionMatch, payload *model.EnhancedPayload, extraction Extraction) []string {
	var base []string
	switch {
	case payload != nil && len(payload.Recommendations) > 0:
		base = payload.Recommendations
	case len(detections) > 0:
		base = u.profile.DefaultRecommendations
	default:
		base = []string{u.profile.Clarification}
	}

	seen := make(map[string]bool, len(base)+len(extraction.Recommendations))
	out := make([]string, 0, len(base)+len(extraction.Recommendations))
	for _, r := range append(append([]string(nil), base...), extraction.Recommendations...) {
		key := strings.ToLower(strings.TrimSpace(r))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func cancelled(domain model.Domain, err error) model.UnitResult {
	return model.ErrorResult(domain, fmt.Sprintf("cancelled: %v", err))
}
