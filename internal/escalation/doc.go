// Package escalation decides whether a cheap deterministic analysis is enough
// or the request should also go through the LLM enhancement pass.
//
// The built-in rules escalate when nothing was detected, when the request
// hedges ("approximately", "not sure"), when it is longer than 15 words, or
// when it mentions more than two domain concepts. Each rule is a CEL condition
// over a signals map, so operators can add rules without code changes:
//
//	policy, err := escalation.NewPolicy(escalation.Options{
//	    ExtraRules: []escalation.Rule{
//	        {Name: "groundwater", Condition: "'groundwater' in signals.categories"},
//	    },
//	}, logger)
//	if policy.NeedsEnhancement(summary, query.Text()) { ... }
package escalation
