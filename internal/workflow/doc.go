// Package workflow is the orchestrator: route a request, fan out to the
// selected analysis units, join, and merge.
//
// The run is an explicit state machine:
//
//	start -> routing -> fanout -> joining -> done
//	start ----------> fanout                     (planner failed)
//
// Every known domain appears in the result, either with the unit's result or
// with a skipped placeholder. Routing fails open: a planner error, unusable
// planner output, or an empty route selects every domain.
//
// Example:
//
//	exec, err := workflow.NewExecutor(planner, routing.NewParser(logger), units,
//	    workflow.Options{PlannerTimeout: 10 * time.Second, UnitTimeout: 60 * time.Second}, logger)
//	result, err := exec.Run(ctx, model.NewQuery("irrigation from the Fraser River"))
package workflow
