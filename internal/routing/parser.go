package routing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aescanero/dago-node-analyzer/internal/jsonspan"
	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultTriggers are the words that select a domain when planner output has
// no usable route.
var DefaultTriggers = map[model.Domain][]string{
	model.DomainSource:      {"source", "water source", "intake"},
	model.DomainUsage:       {"usage", "purpose", "use"},
	model.DomainPermissions: {"permission", "permit", "license", "compliance"},
}

const fallbackClarification = "Please provide more specific information about your water licence request"

type trigger struct {
	domain   model.Domain
	patterns []*regexp.Regexp
}

// Parser turns untrusted planner output into a RoutingDecision.
type Parser struct {
	triggers []trigger
	logger   *zap.Logger
}

// NewParser builds a parser with DefaultTriggers.
func NewParser(logger *zap.Logger) *Parser {
	p, err := NewParserWithTriggers(DefaultTriggers, logger)
	if err != nil {
		panic(fmt.Sprintf("invalid default triggers: %v", err))
	}
	return p
}

// NewParserWithTriggers builds a parser with a custom trigger table. Trigger
// words match at the start of a word, case-insensitively.
func NewParserWithTriggers(table map[model.Domain][]string, logger *zap.Logger) (*Parser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var triggers []trigger
	for _, d := range model.KnownDomains() {
		words, ok := table[d]
		if !ok {
			continue
		}
		t := trigger{domain: d}
		for _, w := range words {
			w = strings.TrimSpace(w)
			if w == "" {
				return nil, fmt.Errorf("domain %s: empty trigger word", d)
			}
			t.patterns = append(t.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)))
		}
		triggers = append(triggers, t)
	}
	for d := range table {
		if !d.IsKnown() {
			return nil, fmt.Errorf("unknown domain in trigger table: %q", d)
		}
	}
	if len(triggers) == 0 {
		return nil, fmt.Errorf("trigger table is empty")
	}

	return &Parser{triggers: triggers, logger: logger}, nil
}

// Parse extracts the selected domains from raw planner output. It never
// panics. When the output holds no usable route array it falls back to a
// trigger-word scan, and when that finds nothing every known domain is
// selected.
func (p *Parser) Parse(raw string) (decision model.RoutingDecision) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("routing parser panic recovered", zap.Any("panic", r))
			decision = model.DefaultRouting(raw, fmt.Sprintf("parser failure: %v", r))
		}
	}()

	var reason string
	span, found := jsonspan.First(raw)
	switch {
	case !found:
		reason = "planner output contains no JSON object"
	case !gjson.Valid(span):
		reason = "planner output contains malformed JSON"
	default:
		route := gjson.Get(span, "route")
		if route.IsArray() {
			return p.fromJSON(raw, span, route)
		}
		reason = "planner output has no route array"
	}

	targets := p.scan(raw)
	if len(targets) == 0 {
		p.logger.Debug("no routing triggers found, selecting all domains", zap.String("reason", reason))
		return model.DefaultRouting(raw, reason)
	}

	return model.RoutingDecision{
		Targets:        targets,
		Clarifications: []string{fallbackClarification},
		RawText:        raw,
		ParseError:     reason,
		Method:         model.RoutingKeyword,
	}
}

func (p *Parser) fromJSON(raw, span string, route gjson.Result) model.RoutingDecision {
	var targets []model.Domain
	route.ForEach(func(_, item gjson.Result) bool {
		if item.Type != gjson.String {
			return true
		}
		if d, ok := model.ParseDomain(item.String()); ok {
			targets = append(targets, d)
		} else {
			p.logger.Debug("dropping unknown routed domain", zap.String("domain", item.String()))
		}
		return true
	})

	clarifications := []string{}
	gjson.Get(span, "clarifications").ForEach(func(_, item gjson.Result) bool {
		if s := strings.TrimSpace(item.String()); s != "" {
			clarifications = append(clarifications, s)
		}
		return true
	})

	return model.RoutingDecision{
		Targets:        model.SortDomains(targets),
		Clarifications: clarifications,
		RawText:        raw,
		Method:         model.RoutingPlanner,
		Analysis:       gjson.Get(span, "analysis").String(),
	}
}

// scan returns the domains whose trigger words occur in text.
func (p *Parser) scan(text string) []model.Domain {
	var out []model.Domain
	for _, t := range p.triggers {
		for _, re := range t.patterns {
			if re.MatchString(text) {
				out = append(out, t.domain)
				break
			}
		}
	}
	return out
}
