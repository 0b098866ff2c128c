// Package analysis implements the per-domain hybrid analysis units.
//
// Every unit runs the same pipeline: search for guidance documents, detect
// domain keywords, scan the form, derive suggestions, then ask the escalation
// policy whether the LLM enhancement pass is needed. What differs between
// source, usage and permissions is captured in a Profile.
//
//	unit, err := analysis.NewUnit(analysis.UsageProfile(), searcher, policy, gateway,
//	    analysis.Options{TopK: 5, SearchTimeout: 5 * time.Second}, logger)
//	result := unit.Analyze(ctx, query)
//
// Analyze never returns an error. Collaborator failures are folded into the
// result: a failed search gives status "error" with no documents, and a failed
// enhancement keeps the rule-based result and records EnhancementError.
package analysis
