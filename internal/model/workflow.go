package model

// RoutingMethod records how a routing decision was reached.
type RoutingMethod string

const (
	// RoutingPlanner means the planner output held a usable route array
	RoutingPlanner RoutingMethod = "planner"

	// RoutingKeyword means the route came from the trigger-word scan
	RoutingKeyword RoutingMethod = "keyword"

	// RoutingDefault means every known domain was selected (fail-open)
	RoutingDefault RoutingMethod = "default"
)

// RoutingDecision is the set of domains selected for one request.
type RoutingDecision struct {
	Targets        []Domain      `json:"targets"`
	Clarifications []string      `json:"clarifications"`
	RawText        string        `json:"raw_text"`
	ParseError     string        `json:"parse_error,omitempty"`
	Method         RoutingMethod `json:"method"`
	Analysis       string        `json:"analysis,omitempty"`
}

// Selects reports whether d is one of the targets.
func (r RoutingDecision) Selects(d Domain) bool {
	for _, t := range r.Targets {
		if t == d {
			return true
		}
	}
	return false
}

// DefaultRouting is the fail-open decision selecting every known domain.
func DefaultRouting(raw, reason string) RoutingDecision {
	return RoutingDecision{
		Targets:        KnownDomains(),
		Clarifications: []string{"Please provide more specific information about your water licence request"},
		RawText:        raw,
		ParseError:     reason,
		Method:         RoutingDefault,
	}
}

// Summary aggregates unit outcomes.
type Summary struct {
	Executed       int  `json:"executed"`
	Skipped        int  `json:"skipped"`
	HadErrors      bool `json:"had_errors"`
	EnhancedCount  int  `json:"enhanced_count"`
	RuleBasedCount int  `json:"rule_based_count"`
}

// WorkflowResult is the merged response of one workflow execution.
type WorkflowResult struct {
	ID      string                `json:"id"`
	Routing RoutingDecision       `json:"routing"`
	Results map[Domain]UnitResult `json:"results"`
	Summary Summary               `json:"summary"`
	Trace   []string              `json:"trace,omitempty"`
}

// Summarize computes the summary for a complete result map.
func Summarize(results map[Domain]UnitResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusSkipped:
			s.Skipped++
			continue
		case StatusError:
			s.HadErrors = true
		}
		s.Executed++

		switch r.ProcessingMethod {
		case MethodHybridLLM:
			if r.Enhancement != nil {
				s.EnhancedCount++
			}
		case MethodRuleBased:
			s.RuleBasedCount++
		}
	}
	return s
}
