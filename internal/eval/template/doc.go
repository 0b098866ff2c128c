// Package template provides Handlebars template rendering for LLM prompts.
//
// Templates are registered by name and parsed when the engine is built, so a
// broken prompt fails at startup instead of on the first request. Use
// triple-stash ({{{value}}}) for request text; double-stash HTML-escapes.
//
// Available helpers:
//   - lowercase, uppercase: change case
//   - default: fallback for empty values
//
// Example:
//
//	engine, err := template.NewEngine(map[string]string{
//	    "planner": "Route this request: {{{query}}}",
//	})
//	prompt, err := engine.Render("planner", map[string]interface{}{"query": text})
package template
