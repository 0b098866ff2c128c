// Package routing decides which analysis domains a request needs.
//
// A Planner produces raw text (an LLM reply, or the request itself in keyword
// mode). The Parser treats that text as untrusted:
//   - Planner: the first JSON object holds a "route" array; unknown names are dropped
//   - Keyword: no usable route, so trigger words select domains
//   - Default: nothing matched, so every domain is selected (fail open)
//
// Example:
//
//	planner, _ := routing.NewPlanner(routing.PlannerAuto, llmClient, 10*time.Second, logger)
//	parser := routing.NewParser(logger)
//
//	raw, err := planner.Plan(ctx, query)
//	if err != nil {
//	    decision = model.DefaultRouting("", err.Error())
//	} else {
//	    decision = parser.Parse(raw)
//	}
package routing
