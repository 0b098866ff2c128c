// Package cel provides CEL (Common Expression Language) evaluation for
// escalation rules.
//
// Conditions are compiled once, type-checked to return a boolean, and cached.
//
// Example:
//
//	evaluator, err := cel.NewEvaluator("signals")
//	if err != nil {
//	    return err
//	}
//	escalate, err := evaluator.EvaluateBool(ctx, "signals.tokens > 15", map[string]interface{}{
//	    "signals": map[string]interface{}{"tokens": int64(22)},
//	})
package cel
