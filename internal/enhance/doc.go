// Package enhance implements the optional LLM pass that refines a rule-based
// analysis.
//
// The gateway renders a domain-specific prompt, calls the LLM collaborator and
// decodes the first JSON object in the reply. Failures come back as typed
// errors (ErrUnavailable, *CallFailedError, *UnparseableResponseError) so the
// calling unit can degrade to its rule-based result.
package enhance
